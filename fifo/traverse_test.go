package fifo

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/momentics/hioload-mpt/api"
	"github.com/momentics/hioload-mpt/fake"
	"github.com/momentics/hioload-mpt/internal/mocks"
)

type stubNode struct {
	path  api.Nibbles
	value []byte
}

func (n *stubNode) HasValue() bool           { return n.value != nil }
func (n *stubNode) Value() []byte            { return n.value }
func (n *stubNode) Data() []byte             { return nil }
func (n *stubNode) PathNibbles() api.Nibbles { return n.path }

func packed(key []byte) [PathHashSize]byte {
	var out [PathHashSize]byte
	copy(out[:], key)
	return out
}

func wordsTrie(t *testing.T, version uint64, kv map[string]string) *fake.Trie {
	t.Helper()
	db := fake.New()
	var ups []fake.Update
	for k, v := range kv {
		ups = append(ups, fake.Update{Key: []byte(k), Value: []byte(v)})
	}
	require.NoError(t, db.Upsert(version, ups...))
	return db
}

func TestTraverse_WholeTrieInOrder(t *testing.T) {
	db := wordsTrie(t, 1, map[string]string{"a": "1", "ab": "2", "abc": "3", "b": "4"})
	m := startManager(t, db, 1)

	require.NoError(t, m.SubmitTraverse(id(1), nil, 1, 0))
	got := pollTraversal(t, m, id(1))
	require.Len(t, got, 5)

	wantKeys := []string{"a", "ab", "abc", "b"}
	wantVals := []string{"1", "2", "3", "4"}
	for i, c := range got[:4] {
		assert.Equal(t, StatusTraverseMore, c.Status)
		assert.Equal(t, packed([]byte(wantKeys[i])), c.PathOrHash, wantKeys[i])
		assert.Equal(t, []byte(wantVals[i]), c.InlineValue())
		assert.False(t, c.PathTruncated())
	}
	assert.Equal(t, StatusTraverseEnd, got[4].Status)
	assert.Nil(t, m.PollCompletion(), "traversals never use the find queue")
}

func TestTraverse_Prefix(t *testing.T) {
	db := wordsTrie(t, 1, map[string]string{"a": "1", "ab": "2", "abc": "3", "b": "4"})
	m := startManager(t, db, 1)

	require.NoError(t, m.SubmitTraverse(id(1), []byte("a"), 1, 0))
	got := pollTraversal(t, m, id(1))
	require.Len(t, got, 4)
	for i, k := range []string{"a", "ab", "abc"} {
		assert.Equal(t, packed([]byte(k)), got[i].PathOrHash)
	}
}

func TestTraverse_MissingPrefixOrVersion(t *testing.T) {
	db := wordsTrie(t, 1, map[string]string{"a": "1"})
	m := startManager(t, db, 1)

	require.NoError(t, m.SubmitTraverse(id(1), []byte("zz"), 1, 0))
	require.NoError(t, m.SubmitTraverse(id(2), nil, 7, 0))
	for _, x := range []CorrelationID{id(1), id(2)} {
		got := pollTraversal(t, m, x)
		require.Len(t, got, 1)
		assert.Equal(t, StatusTraverseEnd, got[0].Status)
	}
}

// branchKeys returns keys 'k' followed by one byte whose high nibble is i,
// so the prefix "k" ends exactly at the branch node above them.
func branchKeys(t *testing.T, n int) *fake.Trie {
	t.Helper()
	db := fake.New()
	for i := 0; i < n; i++ {
		require.NoError(t, db.Put(1, []byte{'k', byte(i) << 4}, []byte{byte(i)}))
	}
	return db
}

func TestTraverse_Limit(t *testing.T) {
	m := startManager(t, branchKeys(t, 10), 1)

	require.NoError(t, m.SubmitTraverse(id(1), []byte("k"), 1, 3))
	got := pollTraversal(t, m, id(1))
	require.Len(t, got, 4)
	for i, c := range got[:3] {
		assert.Equal(t, packed([]byte{'k', byte(i) << 4}), c.PathOrHash)
		assert.Equal(t, []byte{byte(i)}, c.InlineValue())
	}
	assert.Equal(t, StatusTraverseEnd, got[3].Status)
}

func TestTraverse_PrefixMustEndAtNode(t *testing.T) {
	db := fake.New()
	for i := byte(0); i < 10; i++ {
		require.NoError(t, db.Put(1, []byte{'k', i}, []byte{i}))
	}
	m := startManager(t, db, 1)

	// "k" ends inside the compressed segment shared by every key.
	require.NoError(t, m.SubmitTraverse(id(1), []byte("k"), 1, 0))
	got := pollTraversal(t, m, id(1))
	require.Len(t, got, 1)
	assert.Equal(t, StatusTraverseEnd, got[0].Status)

	require.NoError(t, m.SubmitTraverse(id(2), []byte{'k', 4}, 1, 0))
	got = pollTraversal(t, m, id(2))
	require.Len(t, got, 2)
	assert.Equal(t, packed([]byte{'k', 4}), got[0].PathOrHash)
	assert.Equal(t, []byte{4}, got[0].InlineValue())

	require.NoError(t, m.SubmitTraverse(id(3), nil, 1, 0))
	assert.Len(t, pollTraversal(t, m, id(3)), 11, "the root always resolves")
}

func TestTraverse_InterleavedStreams(t *testing.T) {
	m := startManager(t, branchKeys(t, 8), 2)

	require.NoError(t, m.SubmitTraverse(id(1), []byte("k"), 1, 0))
	require.NoError(t, m.SubmitTraverse(id(2), []byte("k"), 1, 5))

	second := pollTraversal(t, m, id(2))
	first := pollTraversal(t, m, id(1))
	require.Len(t, second, 6)
	require.Len(t, first, 9)
	for i, c := range first[:8] {
		assert.Equal(t, packed([]byte{'k', byte(i) << 4}), c.PathOrHash)
	}
	assert.Equal(t, StatusTraverseEnd, first[8].Status)
	assert.Equal(t, StatusTraverseEnd, second[5].Status)
}

func TestTraverse_DefaultLimit(t *testing.T) {
	const keys = DefaultTraverseLimit + 4
	ups := make([]fake.Update, 0, keys)
	for i := 0; i < keys; i++ {
		k := binary.BigEndian.AppendUint16(nil, uint16(i))
		ups = append(ups, fake.Update{Key: k, Value: k})
	}
	db := fake.New()
	require.NoError(t, db.Upsert(1, ups...))
	m := startManager(t, db, 1)

	require.NoError(t, m.SubmitTraverse(id(1), nil, 1, 0))
	got := pollTraversal(t, m, id(1))
	assert.Len(t, got, DefaultTraverseLimit+1)
}

func TestTraverse_LongPaths(t *testing.T) {
	long := bytes.Repeat([]byte{0x12}, 40)
	exact := bytes.Repeat([]byte{0x34}, PathHashSize)
	db := fake.New()
	require.NoError(t, db.Upsert(1,
		fake.Update{Key: long, Value: []byte("long")},
		fake.Update{Key: exact, Value: []byte("exact")},
	))
	m := startManager(t, db, 1)

	require.NoError(t, m.SubmitTraverse(id(1), nil, 1, 0))
	got := pollTraversal(t, m, id(1))
	require.Len(t, got, 3)

	assert.True(t, got[0].PathTruncated())
	assert.Equal(t, long[:PathHashSize-1], got[0].PathOrHash[:PathHashSize-1])
	assert.Equal(t, byte(PathTruncatedMarker), got[0].PathOrHash[PathHashSize-1])
	assert.Equal(t, []byte("long"), got[0].InlineValue())

	assert.False(t, got[1].PathTruncated())
	assert.Equal(t, packed(exact), got[1].PathOrHash)
}

func TestTraverse_LargeValues(t *testing.T) {
	big := bytes.Repeat([]byte("x"), 1000)
	db := fake.New()
	require.NoError(t, db.Upsert(1,
		fake.Update{Key: []byte("a"), Value: big},
		fake.Update{Key: []byte("b"), Value: []byte("small")},
	))
	m := startManager(t, db, 1)

	require.NoError(t, m.SubmitTraverse(id(1), nil, 1, 0))
	got := pollTraversal(t, m, id(1))
	require.Len(t, got, 3)
	assert.True(t, got[0].HasLargeValue())
	assert.Equal(t, []byte("small"), got[1].InlineValue())

	lvs := pollLargeValues(t, m, 1)
	assert.Equal(t, id(1), lvs[0].ID)
	assert.Equal(t, big, lvs[0].Payload)
}

func TestTraverse_VisitorTracksSegments(t *testing.T) {
	ctrl := gomock.NewController(t)
	db := mocks.NewMockTrie(ctrl)
	start := &stubNode{}
	left := &stubNode{path: api.Nibbles{3, 4}, value: []byte("L")}
	deep := &stubNode{path: api.Nibbles{5}, value: []byte("D")}
	right := &stubNode{path: nil, value: []byte("R")}

	db.EXPECT().Find(gomock.Any(), api.NibblesFromBytes([]byte("a")), uint64(2)).Return(start, nil)
	db.EXPECT().Traverse(gomock.Any(), start, uint64(2), 10, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ api.Node, _ uint64, _ int, v api.TraverseVisitor) error {
			assert.True(t, v.Down(api.InvalidBranch, start))
			assert.True(t, v.Down(2, left))
			assert.True(t, v.Down(0xA, deep))
			v.Up(0xA, deep)
			v.Up(2, left)
			assert.True(t, v.Down(7, right))
			v.Up(7, right)
			v.Up(api.InvalidBranch, start)
			return nil
		})

	m := startManager(t, db, 1)
	require.NoError(t, m.SubmitTraverse(id(1), []byte("a"), 2, 10))
	got := pollTraversal(t, m, id(1))
	require.Len(t, got, 4)
	assert.Equal(t, packed([]byte{0x61, 0x23, 0x40}), got[0].PathOrHash)
	assert.Equal(t, packed([]byte{0x61, 0x23, 0x4A, 0x50}), got[1].PathOrHash)
	assert.Equal(t, packed([]byte{0x61, 0x70}), got[2].PathOrHash)
	assert.Equal(t, []byte("R"), got[2].InlineValue())
}

func TestTraverse_VisitorEnforcesLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	db := mocks.NewMockTrie(ctrl)
	start := &stubNode{value: []byte("s")}
	child := &stubNode{value: []byte("c")}

	db.EXPECT().Find(gomock.Any(), gomock.Any(), gomock.Any()).Return(start, nil)
	db.EXPECT().Traverse(gomock.Any(), start, gomock.Any(), 1, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ api.Node, _ uint64, _ int, v api.TraverseVisitor) error {
			assert.False(t, v.Down(api.InvalidBranch, start), "limit reached after the first value")
			// A trie that keeps descending gets nothing more out of the visitor.
			assert.False(t, v.Down(1, child))
			v.Up(1, child)
			v.Up(api.InvalidBranch, start)
			return nil
		})

	m := startManager(t, db, 1)
	require.NoError(t, m.SubmitTraverse(id(1), nil, 1, 1))
	got := pollTraversal(t, m, id(1))
	require.Len(t, got, 2)
	assert.Equal(t, []byte("s"), got[0].InlineValue())
}

func TestTraverse_FailuresStillEnd(t *testing.T) {
	ctrl := gomock.NewController(t)
	db := mocks.NewMockTrie(ctrl)
	emitting := &stubNode{value: []byte("v")}

	db.EXPECT().Find(gomock.Any(), api.NibblesFromBytes([]byte("e")), gomock.Any()).
		Return(nil, errors.New("io"))
	db.EXPECT().Find(gomock.Any(), api.NibblesFromBytes([]byte("p")), gomock.Any()).
		Return(emitting, nil)
	db.EXPECT().Find(gomock.Any(), api.NibblesFromBytes([]byte("t")), gomock.Any()).
		Return(emitting, nil)
	db.EXPECT().Traverse(gomock.Any(), emitting, gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ api.Node, _ uint64, _ int, v api.TraverseVisitor) error {
			v.Down(api.InvalidBranch, emitting)
			panic("broken node")
		})
	db.EXPECT().Traverse(gomock.Any(), emitting, gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ api.Node, _ uint64, _ int, v api.TraverseVisitor) error {
			v.Down(api.InvalidBranch, emitting)
			return errors.New("interrupted")
		})

	m := startManager(t, db, 1)

	require.NoError(t, m.SubmitTraverse(id(1), []byte("e"), 1, 0))
	got := pollTraversal(t, m, id(1))
	require.Len(t, got, 1)
	assert.Equal(t, StatusTraverseEnd, got[0].Status)

	require.NoError(t, m.SubmitTraverse(id(2), []byte("p"), 1, 0))
	got = pollTraversal(t, m, id(2))
	require.Len(t, got, 2, "records emitted before the panic are kept")
	assert.Equal(t, StatusTraverseMore, got[0].Status)

	require.NoError(t, m.SubmitTraverse(id(3), []byte("t"), 1, 0))
	got = pollTraversal(t, m, id(3))
	require.Len(t, got, 2)
	assert.Equal(t, StatusTraverseEnd, got[1].Status)

	req := m.AllocRequest()
	req.ID, req.Kind, req.KeyLen = id(4), KindTraverse, KeyCapacity+8
	require.NoError(t, m.Submit(req))
	got = pollTraversal(t, m, id(4))
	require.Len(t, got, 1, "malformed key ends the stream immediately")
	assert.True(t, m.Running())
}
