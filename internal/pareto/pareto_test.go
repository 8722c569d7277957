package pareto

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journeyplanner.org/internal/criteria"
)

func tuple(arr, changes int) criteria.Criteria {
	return criteria.MustPack(arr, changes, 0)
}

func pairs(f Front) [][2]int {
	var out [][2]int
	f.ForEach(func(c criteria.Criteria) {
		out = append(out, [2]int{c.ArrMins(), c.Changes()})
	})
	return out
}

func TestBuilderDiscardsDominatedTuples(t *testing.T) {
	b := NewBuilder()
	assert.True(t, b.Add(tuple(480, 3)))
	assert.False(t, b.Add(tuple(480, 4)))
	assert.True(t, b.Add(tuple(470, 2)))
	assert.False(t, b.Add(tuple(500, 8)))

	f := b.Build()
	require.Equal(t, 2, f.Size())
	assert.ElementsMatch(t, [][2]int{{470, 2}, {480, 3}}, pairs(f))
}

func TestBuilderRemovesTuplesDominatedByNewOne(t *testing.T) {
	b := NewBuilder()
	b.Add(tuple(500, 1))
	b.Add(tuple(490, 3))
	b.Add(tuple(520, 0))
	require.Equal(t, 3, b.Size())

	assert.True(t, b.Add(tuple(480, 1)))
	assert.ElementsMatch(t, [][2]int{{480, 1}, {520, 0}}, pairs(b.Build()))
}

func TestAddingDominatedTupleLeavesBuilderUnchanged(t *testing.T) {
	b := NewBuilder()
	b.Add(tuple(470, 2))
	b.Add(tuple(480, 1))
	before := b.Build()

	assert.False(t, b.Add(tuple(470, 2).WithPayload(99)))
	assert.False(t, b.Add(tuple(485, 1)))
	assert.Equal(t, before, b.Build())
}

func TestInsertionOrderDoesNotMatter(t *testing.T) {
	var tuples []criteria.Criteria
	for arr := 400; arr < 440; arr += 3 {
		for changes := 0; changes < 6; changes++ {
			tuples = append(tuples, tuple(arr+changes*changes, 12-2*changes+arr%5))
		}
	}

	reference := NewBuilder()
	for _, c := range tuples {
		reference.Add(c)
	}
	want := reference.Build()

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		rng.Shuffle(len(tuples), func(a, b int) { tuples[a], tuples[b] = tuples[b], tuples[a] })
		b := NewBuilder()
		for _, c := range tuples {
			b.Add(c)
		}
		assert.Equal(t, want, b.Build())
	}
}

func TestFrontierIsNonDominated(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	b := NewBuilder()
	for i := 0; i < 500; i++ {
		c := tuple(300+rng.Intn(200), rng.Intn(10)).WithDepMins(200 + rng.Intn(100))
		b.Add(c.WithPayload(uint32(i)))
	}
	f := b.Build()
	require.False(t, f.IsEmpty())

	for i := 0; i < f.Size(); i++ {
		for j := 0; j < f.Size(); j++ {
			if i != j {
				assert.False(t, criteria.DominatesOrIsEqual(f.At(i), f.At(j)), "%v dominates %v", f.At(i), f.At(j))
			}
		}
		if i > 0 {
			assert.Less(t, uint64(f.At(i-1)), uint64(f.At(i)))
		}
	}
}

func TestAddAll(t *testing.T) {
	a := NewBuilder()
	a.Add(tuple(470, 2))
	a.Add(tuple(490, 0))

	b := NewBuilder()
	b.Add(tuple(480, 1))
	b.Add(tuple(475, 2))

	a.AddAll(b)
	assert.ElementsMatch(t, [][2]int{{470, 2}, {480, 1}, {490, 0}}, pairs(a.Build()))
	assert.Equal(t, 2, b.Size())
}

func TestFullyDominates(t *testing.T) {
	assert.True(t, NewBuilder().FullyDominates(NewBuilder(), 100), "empty by empty")

	station := NewBuilder()
	station.Add(tuple(500, 1).WithDepMins(420))
	station.Add(tuple(480, 2).WithDepMins(410))

	local := NewBuilder()
	local.Add(tuple(510, 1))
	local.Add(tuple(490, 2))

	assert.True(t, station.FullyDominates(local, 410))
	assert.False(t, station.FullyDominates(local, 415), "later departure is not dominated")

	local.Add(tuple(470, 3))
	assert.False(t, station.FullyDominates(local, 400))
	assert.False(t, NewBuilder().FullyDominates(local, 400))
}

func TestCloneAndClearDoNotAlias(t *testing.T) {
	b := NewBuilder()
	b.Add(tuple(470, 2))
	b.Add(tuple(480, 1))

	c := b.Clone()
	c.Add(tuple(460, 0))
	assert.Equal(t, 2, b.Size())
	assert.Equal(t, 1, c.Size())

	f := b.Build()
	b.Clear()
	assert.True(t, b.IsEmpty())
	assert.Equal(t, 2, f.Size())

	d := FromFront(f)
	d.Add(tuple(400, 5))
	assert.Equal(t, 2, f.Size())
	assert.Equal(t, 3, d.Size())
}

func TestFrontGet(t *testing.T) {
	b := NewBuilder()
	b.Add(criteria.MustPack(470, 2, 11).WithDepMins(400))
	b.Add(criteria.MustPack(480, 1, 12).WithDepMins(400))
	f := b.Build()

	c, err := f.Get(480, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(12), c.Payload())

	_, err = f.Get(480, 2)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = Empty().Get(480, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}
