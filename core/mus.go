package core

import (
	"fmt"
	"sort"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Handwritten MUS serializers for the persistence layer. The graph persists
// as a single snapshot blob and chunks as individual records; the type set
// is small and stable, so the codecs are written out instead of generated.
//
// Map keys are marshaled in sorted order so identical graphs produce
// identical snapshot bytes.
var (
	IDMUS             = idMUS{}
	EdgeMUS           = edgeMUS{}
	NodeMUS           = nodeMUS{}
	KnowledgeGraphMUS = knowledgeGraphMUS{}
	ChunkMUS          = chunkMUS{}
)

// maxCollectionLen bounds decoded collection lengths so corrupt bytes cannot
// trigger huge allocations.
const maxCollectionLen = 1 << 26

func unmarshalLen(bs []byte) (int, int, error) {
	l, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return 0, n, err
	}
	if l < 0 || l > maxCollectionLen {
		return 0, n, fmt.Errorf("%w: length %d", ErrMalformedRecord, l)
	}
	return l, n, nil
}

type idMUS struct{}

func (idMUS) Marshal(v ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(v ID) int {
	return varint.Uint64.Size(uint64(v))
}

type edgeMUS struct{}

func (edgeMUS) Marshal(v Edge, bs []byte) int {
	n := ord.String.Marshal(v.Source, bs)
	n += ord.String.Marshal(v.Relation, bs[n:])
	n += ord.String.Marshal(v.Target, bs[n:])
	return n
}

func (edgeMUS) Unmarshal(bs []byte) (Edge, int, error) {
	var (
		v   Edge
		n   int
		err error
	)
	v.Source, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return v, n, err
	}
	var m int
	v.Relation, m, err = ord.String.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return v, n, err
	}
	v.Target, m, err = ord.String.Unmarshal(bs[n:])
	n += m
	return v, n, err
}

func (edgeMUS) Size(v Edge) int {
	return ord.String.Size(v.Source) + ord.String.Size(v.Relation) + ord.String.Size(v.Target)
}

type nodeMUS struct{}

func (nodeMUS) Marshal(v Node, bs []byte) int {
	n := ord.String.Marshal(v.Name, bs)
	n += ord.String.Marshal(v.Type, bs[n:])
	n += varint.Int.Marshal(len(v.Attrs), bs[n:])
	for _, k := range sortedKeys(v.Attrs) {
		n += ord.String.Marshal(k, bs[n:])
		n += ord.String.Marshal(v.Attrs[k], bs[n:])
	}
	return n
}

func (nodeMUS) Unmarshal(bs []byte) (Node, int, error) {
	var (
		v   Node
		n   int
		err error
	)
	v.Name, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return v, n, err
	}
	var m int
	v.Type, m, err = ord.String.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return v, n, err
	}
	var l int
	l, m, err = unmarshalLen(bs[n:])
	n += m
	if err != nil {
		return v, n, err
	}
	if l > 0 {
		v.Attrs = make(map[string]string, l)
		for i := 0; i < l; i++ {
			var key, val string
			key, m, err = ord.String.Unmarshal(bs[n:])
			n += m
			if err != nil {
				return v, n, err
			}
			val, m, err = ord.String.Unmarshal(bs[n:])
			n += m
			if err != nil {
				return v, n, err
			}
			v.Attrs[key] = val
		}
	}
	return v, n, nil
}

func (nodeMUS) Size(v Node) int {
	size := ord.String.Size(v.Name) + ord.String.Size(v.Type) + varint.Int.Size(len(v.Attrs))
	for k, val := range v.Attrs {
		size += ord.String.Size(k) + ord.String.Size(val)
	}
	return size
}

type knowledgeGraphMUS struct{}

func (knowledgeGraphMUS) Marshal(v KnowledgeGraph, bs []byte) int {
	names := make([]string, 0, len(v.Nodes))
	for name := range v.Nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	n := varint.Int.Marshal(len(names), bs)
	for _, name := range names {
		n += NodeMUS.Marshal(v.Nodes[name], bs[n:])
	}
	n += varint.Int.Marshal(len(v.Edges), bs[n:])
	for _, e := range v.Edges {
		n += EdgeMUS.Marshal(e, bs[n:])
	}
	return n
}

func (knowledgeGraphMUS) Unmarshal(bs []byte) (KnowledgeGraph, int, error) {
	var v KnowledgeGraph
	l, n, err := unmarshalLen(bs)
	if err != nil {
		return v, n, err
	}
	v.Nodes = make(map[string]Node, l)
	var m int
	for i := 0; i < l; i++ {
		var node Node
		node, m, err = NodeMUS.Unmarshal(bs[n:])
		n += m
		if err != nil {
			return v, n, err
		}
		v.Nodes[node.Name] = node
	}
	l, m, err = unmarshalLen(bs[n:])
	n += m
	if err != nil {
		return v, n, err
	}
	if l > 0 {
		v.Edges = make([]Edge, l)
		for i := 0; i < l; i++ {
			v.Edges[i], m, err = EdgeMUS.Unmarshal(bs[n:])
			n += m
			if err != nil {
				return v, n, err
			}
		}
	}
	return v, n, nil
}

func (knowledgeGraphMUS) Size(v KnowledgeGraph) int {
	size := varint.Int.Size(len(v.Nodes))
	for _, node := range v.Nodes {
		size += NodeMUS.Size(node)
	}
	size += varint.Int.Size(len(v.Edges))
	for _, e := range v.Edges {
		size += EdgeMUS.Size(e)
	}
	return size
}

type chunkMUS struct{}

func (chunkMUS) Marshal(v Chunk, bs []byte) int {
	n := IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Text, bs[n:])
	n += ord.String.Marshal(v.Source, bs[n:])
	n += varint.Int.Marshal(len(v.Vector), bs[n:])
	for _, f := range v.Vector {
		n += varint.Float32.Marshal(f, bs[n:])
	}
	n += varint.Int64.Marshal(v.InsertedAt.UnixMicro(), bs[n:])
	n += varint.Int64.Marshal(v.UpdatedAt.UnixMicro(), bs[n:])
	return n
}

func (chunkMUS) Unmarshal(bs []byte) (Chunk, int, error) {
	var (
		v   Chunk
		n   int
		err error
	)
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return v, n, err
	}
	var m int
	v.Text, m, err = ord.String.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return v, n, err
	}
	v.Source, m, err = ord.String.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return v, n, err
	}
	var l int
	l, m, err = unmarshalLen(bs[n:])
	n += m
	if err != nil {
		return v, n, err
	}
	if l > 0 {
		v.Vector = make([]float32, l)
		for i := 0; i < l; i++ {
			v.Vector[i], m, err = varint.Float32.Unmarshal(bs[n:])
			n += m
			if err != nil {
				return v, n, err
			}
		}
	}
	var micros int64
	micros, m, err = varint.Int64.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return v, n, err
	}
	v.InsertedAt = time.UnixMicro(micros).UTC()
	micros, m, err = varint.Int64.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return v, n, err
	}
	v.UpdatedAt = time.UnixMicro(micros).UTC()
	return v, n, nil
}

func (chunkMUS) Size(v Chunk) int {
	size := IDMUS.Size(v.Id) + ord.String.Size(v.Text) + ord.String.Size(v.Source)
	size += varint.Int.Size(len(v.Vector))
	for _, f := range v.Vector {
		size += varint.Float32.Size(f)
	}
	size += varint.Int64.Size(v.InsertedAt.UnixMicro())
	size += varint.Int64.Size(v.UpdatedAt.UnixMicro())
	return size
}

func sortedKeys(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
