package result

import (
	"bytes"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-hep.org/x/hep/hbook"
)

func newFit(name string, value, stat, fitStatus, chi2 float64) *Leaf {
	l := NewLeaf(name, name)
	l.Set("S", value, stat, 0)
	l.Set(FitResultKey, fitStatus, 0, 0)
	l.Set(Chi2PerNDFKey, chi2, 0, 0)
	return l
}

func TestLeafSetValue(t *testing.T) {
	l := NewLeaf("fit", "")
	l.Set("S", 1234.5, 35, 2)

	v, err := l.Value("S")
	require.NoError(t, err)
	assert.Equal(t, 1234.5, v)

	e, err := l.ErrorStat("S")
	require.NoError(t, err)
	assert.Equal(t, 35.0, e)
	assert.Equal(t, 2.0, l.RMS("S"))

	l.Set("S", 10, 1, 0)
	v, err = l.Value("S")
	require.NoError(t, err)
	assert.Equal(t, 10.0, v)
	assert.Equal(t, []string{"S"}, l.Names())

	_, err = l.Value("B")
	assert.ErrorIs(t, err, ErrNoValue)
	assert.Equal(t, 0.0, l.RMS("B"))
	assert.Equal(t, 0, l.HasValue("B"))
	assert.Equal(t, 1, l.HasValue("S"))

	_, err = l.SubResult("x")
	assert.ErrorIs(t, err, ErrNoSubResult)
}

func TestLeafScaleComposes(t *testing.T) {
	a := NewLeaf("a", "")
	a.Set("S", 3, 0.5, 0.25)
	a.Set("B", -2, 1, 4)
	b := NewLeaf("b", "")
	b.Set("S", 3, 0.5, 0.25)
	b.Set("B", -2, 1, 4)

	a.Scale(2)
	a.Scale(0.5)
	b.Scale(2 * 0.5)

	for _, name := range []string{"S", "B"} {
		ra, _ := a.Record(name)
		rb, _ := b.Record(name)
		assert.Equal(t, rb, ra, name)
	}

	a.Scale(4)
	rec, ok := a.Record("S")
	require.True(t, ok)
	assert.Equal(t, Record{Value: 12, StatError: 2, RMS: 1}, rec)
}

func TestAdoptSubResult(t *testing.T) {
	c := NewComposite("bin", "")
	assert.Equal(t, 2, c.AdoptSubResult(NewLeaf("a", ""), NewLeaf("b", "")))
	assert.Equal(t, []string{"a", "b"}, c.SubResultNames())

	c2 := NewComposite("bin", "")
	first := NewLeaf("a", "first")
	second := NewLeaf("a", "second")
	assert.Equal(t, 1, c2.AdoptSubResult(first, second))
	assert.Equal(t, []string{"a"}, c2.SubResultNames())

	r, err := c2.SubResult("a")
	require.NoError(t, err)
	assert.Same(t, second, r)
	assert.True(t, c2.IsIncluded("a"))

	assert.Equal(t, 0, c2.AdoptSubResult(NewLeaf("a", "third")))
}

func TestWeightedMean(t *testing.T) {
	c := NewComposite("bin", "")
	c.AdoptSubResult(
		newFit("f1", 2, 0.1, 0, 1),
		newFit("f2", 4, 0.2, 0, 1),
		newFit("f3", 6, 0.3, 0, 1),
	)

	v, err := c.Value("S")
	require.NoError(t, err)
	assert.Equal(t, 4.0, v)

	e, err := c.ErrorStat("S")
	require.NoError(t, err)
	assert.InDelta(t, 0.2, e, 1e-12)

	// v1 = 3, v2 = 3, sm = 8 -> sqrt(3/6 * 8) = 2
	assert.InDelta(t, 2.0, c.RMS("S"), 1e-12)
}

func TestWeights(t *testing.T) {
	c := NewComposite("bin", "")
	a := newFit("a", 10, 1, 0, 1)
	b := newFit("b", 20, 3, 0, 1)
	b.SetWeight(3)
	c.AdoptSubResult(a, b)

	v, err := c.Value("S")
	require.NoError(t, err)
	assert.InDelta(t, 17.5, v, 1e-12)

	e, err := c.ErrorStat("S")
	require.NoError(t, err)
	assert.InDelta(t, 2.5, e, 1e-12)

	// v1 = 4, v2 = 10, sm = 56.25 + 3*6.25 = 75
	want := math.Sqrt(4.0 / 6.0 * 75)
	assert.InDelta(t, want, c.RMS("S"), 1e-12)
}

func TestQualityGate(t *testing.T) {
	c := NewComposite("bin", "")
	c.AdoptSubResult(
		newFit("good1", 10.0, 0.5, 0, 1.2),
		newFit("good2", 12.0, 0.6, 0, 1.1),
		newFit("bad", 9.0, 20.0, 1, 5.0),
	)

	v, err := c.Value("S")
	require.NoError(t, err)
	assert.Equal(t, 11.0, v)

	e, err := c.ErrorStat("S")
	require.NoError(t, err)
	assert.InDelta(t, 0.55, e, 1e-12)

	assert.InDelta(t, math.Sqrt(2), c.RMS("S"), 1e-12)

	rejs := c.Rejected("S")
	require.Len(t, rejs, 1)
	assert.Equal(t, "bad", rejs[0].Name)
	assert.Equal(t, 1.0, rejs[0].FitStatus)
	assert.Equal(t, 3.0, rejs[0].CovStatus)
	assert.Equal(t, "fit quality", rejs[0].Reason)
}

func TestQualityGateStatusOnly(t *testing.T) {
	c := NewComposite("bin", "")
	c.AdoptSubResult(
		newFit("ok", 5, 0.5, 0, 1),
		newFit("status1", 500, 0.5, 1, 1),
		newFit("improve", 7, 0.5, 4000, 1),
		newFit("chi2", 900, 0.5, 0, 2.6),
	)

	v, err := c.Value("S")
	require.NoError(t, err)
	assert.Equal(t, 6.0, v)
	assert.Len(t, c.Rejected("S"), 2)
}

func TestQualityGateNaN(t *testing.T) {
	c := NewComposite("bin", "")
	c.AdoptSubResult(
		newFit("ok", 5, 0.5, 0, 1),
		newFit("nanChi2", 500, 0.5, 0, math.NaN()),
		newFit("nanStatus", 900, 0.5, math.NaN(), 1),
	)

	v, err := c.Value("S")
	require.NoError(t, err)
	assert.Equal(t, 5.0, v)

	rejs := c.Rejected("S")
	require.Len(t, rejs, 2)
	assert.Equal(t, "nanChi2", rejs[0].Name)
	assert.Equal(t, "nanStatus", rejs[1].Name)
	for _, r := range rejs {
		assert.Equal(t, "fit quality", r.Reason)
	}
}

func TestQualityGateDefaults(t *testing.T) {
	c := NewComposite("bin", "")
	a := NewLeaf("a", "")
	a.Set("S", 1, 0.1, 0)
	b := NewLeaf("b", "")
	b.Set("S", 3, 0.1, 0)
	c.AdoptSubResult(a, b)

	v, err := c.Value("S")
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)
}

func TestNegativeErrorDoesNotQualify(t *testing.T) {
	c := NewComposite("bin", "")
	c.AdoptSubResult(newFit("a", 1, 0.1, 0, 1), newFit("b", 100, -1, 0, 1))

	v, err := c.Value("S")
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
}

func TestExcludeAll(t *testing.T) {
	c := NewComposite("bin", "")
	c.AdoptSubResult(newFit("a", 1, 0.1, 0, 1), newFit("b", 2, 0.1, 0, 1))

	c.Exclude("*")
	_, err := c.Value("S")
	assert.ErrorIs(t, err, ErrNoQualifying)
	_, err = c.ErrorStat("S")
	assert.ErrorIs(t, err, ErrNoQualifying)
	assert.Equal(t, 0.0, c.RMS("S"))
	assert.False(t, c.IsIncluded("a"))

	// storage is untouched
	assert.Equal(t, 2, c.HasValue("S"))

	c.Include("*")
	v, err := c.Value("S")
	require.NoError(t, err)
	assert.Equal(t, 1.5, v)
}

func TestIncludeExclude(t *testing.T) {
	c := NewComposite("bin", "")
	c.AdoptSubResult(
		newFit("a", 1, 0.1, 0, 1),
		newFit("b", 2, 0.1, 0, 1),
		newFit("c", 6, 0.1, 0, 1),
	)

	c.Exclude("a,c")
	assert.False(t, c.IsIncluded("a"))
	assert.True(t, c.IsIncluded("b"))
	v, err := c.Value("S")
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)

	c.Include("c")
	v, err = c.Value("S")
	require.NoError(t, err)
	assert.Equal(t, 4.0, v)

	c.Include()
	_, err = c.Value("S")
	assert.ErrorIs(t, err, ErrNoQualifying)
}

func TestIncludeOnFreshComposite(t *testing.T) {
	c := NewComposite("bin", "")
	assert.True(t, c.IsIncluded("anything"))
	c.Include("x")
	assert.True(t, c.IsIncluded("anything"))
}

func TestRMSSingleChildPassesThrough(t *testing.T) {
	l := NewLeaf("only", "")
	l.Set("S", 10, 1, 0.7)
	c := NewComposite("bin", "")
	c.AdoptSubResult(l, newFit("bad", 3, 1, 1, 1))

	assert.Equal(t, 0.7, c.RMS("S"))
}

func TestSumPolicy(t *testing.T) {
	c := NewComposite("all", "")
	c.SetPolicy(Sum)
	c.AdoptSubResult(newFit("a", 100, 10, 0, 1), newFit("b", 300, 30, 0, 1))

	v, err := c.Value("S")
	require.NoError(t, err)
	assert.Equal(t, 400.0, v)

	e, err := c.ErrorStat("S")
	require.NoError(t, err)
	assert.InDelta(t, 400*math.Sqrt(0.01+0.01), e, 1e-9)

	z := NewComposite("zero", "")
	z.SetPolicy(Sum)
	z.AdoptSubResult(newFit("a", 1, 0.1, 0, 1), newFit("b", -1, 0.1, 0, 1))
	_, err = z.Value("S")
	assert.ErrorIs(t, err, ErrUndefined)
}

func TestSubResultLookup(t *testing.T) {
	c := NewComposite("bin", "")
	c.AdoptSubResult(newFit("a", 1, 0.1, 0, 1), newFit("b", 2, 0.2, 0, 1))

	v, err := ValueOf(c, "S", "b")
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)

	e, err := ErrorStatOf(c, "S", "b")
	require.NoError(t, err)
	assert.Equal(t, 0.2, e)

	_, err = ValueOf(c, "S", "nope")
	assert.ErrorIs(t, err, ErrNoSubResult)
	assert.Equal(t, 0.0, RMSOf(c, "S", "nope"))
	assert.Equal(t, 0, HasValueOf(c, "S", "nope"))
	assert.Equal(t, 1, HasValueOf(c, "S", "a"))
}

func TestNestedComposite(t *testing.T) {
	inner := NewComposite("inner", "")
	inner.AdoptSubResult(newFit("a", 2, 0.1, 0, 1), newFit("b", 4, 0.1, 0, 1))
	outer := NewComposite("outer", "")
	outer.AdoptSubResult(inner, newFit("c", 9, 0.1, 0, 1))

	v, err := outer.Value("S")
	require.NoError(t, err)
	assert.Equal(t, 6.0, v)
	assert.Equal(t, 2, outer.HasValue("S"))
}

func TestNestedCompositeMixedStatus(t *testing.T) {
	inner := NewComposite("inner", "")
	inner.AdoptSubResult(newFit("a", 10, 0.5, 0, 1.2), newFit("b", 12, 0.5, 4000, 1.1))
	outer := NewComposite("outer", "")
	outer.AdoptSubResult(inner)

	want, err := inner.Value("S")
	require.NoError(t, err)
	assert.Equal(t, 11.0, want)

	v, err := outer.Value("S")
	require.NoError(t, err)
	assert.Equal(t, want, v)
	assert.Empty(t, outer.Rejected("S"))
}

func TestNestedCompositeWithoutQualifyingChild(t *testing.T) {
	inner := NewComposite("inner", "")
	inner.AdoptSubResult(newFit("bad", 10, 0.5, 1, 1))
	outer := NewComposite("outer", "")
	outer.AdoptSubResult(inner, newFit("c", 4, 0.5, 0, 1))

	v, err := outer.Value("S")
	require.NoError(t, err)
	assert.Equal(t, 4.0, v)

	rejs := outer.Rejected("S")
	require.Len(t, rejs, 1)
	assert.Equal(t, "inner", rejs[0].Name)
	assert.Equal(t, "no value", rejs[0].Reason)
}

func TestSnapshotRoundTrip(t *testing.T) {
	c := NewComposite("bin", "title")
	c.SetPolicy(Sum)
	a := newFit("a", 1, 0.1, 0, 1)
	a.SetWeight(2)
	c.AdoptSubResult(a, newFit("b", 2, 0.2, 0, 1))
	c.Exclude("b")

	snap, err := Encode(c)
	require.NoError(t, err)
	back, err := Decode(snap)
	require.NoError(t, err)

	again, err := Encode(back)
	require.NoError(t, err)
	if diff := cmp.Diff(snap, again); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}

	bc := back.(*Composite)
	assert.False(t, bc.IsIncluded("b"))
	assert.Equal(t, Sum, bc.Policy())
}

func TestSnapshotKeepsHistogram(t *testing.T) {
	l := newFit("a", 1, 0.1, 0, 1)
	l.Hist = hbook.NewH1D(10, 3000, 3200)
	l.Hist.Fill(3095, 1)
	l.Hist.Fill(3105, 2)

	snap, err := Encode(l)
	require.NoError(t, err)
	assert.Contains(t, snap.Hist, "YODA_HISTO1D")

	back, err := Decode(snap)
	require.NoError(t, err)
	h := back.(*Leaf).Hist
	require.NotNil(t, h)
	assert.Equal(t, 10, h.Len())
	assert.InDelta(t, 3.0, h.SumW(), 1e-12)
}

func TestPrint(t *testing.T) {
	c := NewComposite("bin", "pt bin")
	c.AdoptSubResult(newFit("a", 2, 0.5, 0, 1), newFit("b", 4, 0.5, 0, 1))
	c.Exclude("b")

	var buf bytes.Buffer
	Print(&buf, c, "ALL")
	out := buf.String()
	assert.Contains(t, out, "name : bin title : pt bin")
	assert.Contains(t, out, "(2 subresults)")
	assert.Contains(t, out, "-- S : 2 +- 0.5 (stat) +- 0 (RMS)")
	assert.Contains(t, out, "[EXCLUDED]")
	assert.Contains(t, out, "name : b")

	buf.Reset()
	Print(&buf, c, "")
	assert.NotContains(t, buf.String(), "sub results")
}
