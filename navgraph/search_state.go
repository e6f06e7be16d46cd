package navgraph

import (
	"errors"
	"fmt"

	"github.com/gorustyt/gonavbot/common/rw"
)

const searchStateMagic = 'N'<<24 | 'G'<<16 | 'S'<<8 | 'S' //'NGSS'
const searchStateVersion = 1

var ErrBadSearchState = errors.New("navgraph: bad search state")

func (st *SearchState) MarshalBinary() ([]byte, error) {
	w := rw.NewBinWriter()
	w.WriteInt32(uint32(searchStateMagic))
	w.WriteInt32(int32(searchStateVersion))
	w.WriteInt32(uint32(st.Status))
	w.WriteInt32(uint32(st.Start))
	w.WriteInt32(uint32(st.Goal))
	w.WriteFloat32s(st.GoalPos[:])
	w.WriteInt32(st.Current)
	w.WriteInt32(st.EdgeCursor)
	w.WriteInt32(st.EdgesProcessed)
	w.WriteInt32(len(st.Nodes))
	for i := range st.Nodes {
		n := &st.Nodes[i]
		w.WriteInt32(uint32(n.Ref))
		w.WriteInt32(n.Parent)
		w.WriteFloat32(n.Cost)
		w.WriteFloat32(n.Total)
		w.WriteUInt8(n.Flags)
	}
	return w.GetWriteBytes(), nil
}

func (st *SearchState) UnmarshalBinary(data []byte) error {
	r := rw.NewBinReader(data)
	if magic := r.ReadUInt32(); magic != searchStateMagic {
		return fmt.Errorf("%w: magic %#x", ErrBadSearchState, magic)
	}
	if version := r.ReadInt32(); version != searchStateVersion {
		return fmt.Errorf("%w: version %d", ErrBadSearchState, version)
	}
	st.Status = Status(r.ReadUInt32())
	st.Start = VertexRef(r.ReadUInt32())
	st.Goal = VertexRef(r.ReadUInt32())
	r.ReadFloat32s(st.GoalPos[:])
	st.Current = r.ReadInt32()
	st.EdgeCursor = r.ReadInt32()
	st.EdgesProcessed = r.ReadInt32()
	count := r.ReadInt32()
	if err := r.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrBadSearchState, err)
	}
	if count < 0 || int(count)*17 > len(data) {
		return fmt.Errorf("%w: node count %d", ErrBadSearchState, count)
	}
	st.Nodes = make([]Node, count)
	for i := range st.Nodes {
		n := &st.Nodes[i]
		n.Ref = VertexRef(r.ReadUInt32())
		n.Parent = r.ReadInt32()
		n.Cost = r.ReadFloat32()
		n.Total = r.ReadFloat32()
		n.Flags = r.ReadUInt8()
	}
	if err := r.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrBadSearchState, err)
	}
	if st.Current < NULL_IDX || st.Current >= count {
		return fmt.Errorf("%w: current node %d", ErrBadSearchState, st.Current)
	}
	seen := make(map[VertexRef]struct{}, count)
	for i := range st.Nodes {
		n := &st.Nodes[i]
		if n.Parent < NULL_IDX || n.Parent >= count {
			return fmt.Errorf("%w: node %d parent %d", ErrBadSearchState, i, n.Parent)
		}
		if _, dup := seen[n.Ref]; dup {
			return fmt.Errorf("%w: vertex %d stored twice", ErrBadSearchState, n.Ref)
		}
		seen[n.Ref] = struct{}{}
	}
	if i := parentCycle(st.Nodes); i != NULL_IDX {
		return fmt.Errorf("%w: node %d is its own ancestor", ErrBadSearchState, i)
	}
	return nil
}

// parentCycle returns a node whose parent chain loops, NULL_IDX if none.
func parentCycle(nodes []Node) int32 {
	const (
		unseen = iota
		walking
		rooted
	)
	state := make([]uint8, len(nodes))
	for i := range nodes {
		idx := int32(i)
		for idx != NULL_IDX && state[idx] == unseen {
			state[idx] = walking
			idx = nodes[idx].Parent
		}
		if idx != NULL_IDX && state[idx] == walking {
			return idx
		}
		for j := int32(i); j != NULL_IDX && state[j] == walking; j = nodes[j].Parent {
			state[j] = rooted
		}
	}
	return NULL_IDX
}
