package spectra

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminaudurier/anna/result"
)

func fit(name string, s, e float64) *result.Leaf {
	l := result.NewLeaf(name, "")
	l.Set("S", s, e, 0)
	l.Set(result.FitResultKey, 0, 0, 0)
	return l
}

func binResult(name string, values ...float64) *result.Composite {
	c := result.NewComposite(name, "")
	for i, v := range values {
		c.AdoptSubResult(fit(string(rune('a'+i)), v, 0.1*v))
	}
	return c
}

func TestAdoptResultRoundTrip(t *testing.T) {
	s := New("PT", "pt spectra")
	r := binResult("b1", 10, 12)

	assert.Equal(t, 1, s.AdoptResult(r, "b1"))
	got, ok := s.ResultsForBin("b1")
	require.True(t, ok)
	assert.Same(t, r, got)

	_, ok = s.ResultsForBin("b2")
	assert.False(t, ok)
}

func TestAdoptResultNilAndOverwrite(t *testing.T) {
	s := New("PT", "")
	assert.Equal(t, 0, s.AdoptResult(nil, "b1"))
	assert.Empty(t, s.Bins())

	first := binResult("first", 1)
	second := binResult("second", 2)
	assert.Equal(t, 1, s.AdoptResult(first, 3))
	assert.Equal(t, 0, s.AdoptResult(second, 3))

	got, ok := s.ResultsForBin("3")
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.Equal(t, []string{"3"}, s.Bins())
	assert.Len(t, s.Results(), 1)
}

func TestBinKeys(t *testing.T) {
	b := Bin{Variable: "PT", Low: 0, High: 1000}
	assert.Equal(t, "PT_0.00_1000.00", b.String())
	assert.Equal(t, 500.0, b.Center())
	assert.Equal(t, 500.0, b.HalfWidth())
	assert.True(t, b.Contains(0))
	assert.False(t, b.Contains(1000))

	s := New("PT", "")
	s.AdoptResult(binResult("x", 1), b)
	got, ok := s.Bin(b.String())
	require.True(t, ok)
	assert.Equal(t, b, got)
	_, ok = s.ResultsForBin(b)
	assert.True(t, ok)
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := New("PT", "pt")
	s.AdoptResult(binResult("x", 1, 2), Bin{Variable: "PT", Low: 0, High: 1000})
	s.AdoptResult(binResult("y", 3), "free")

	snap, err := Encode(s)
	require.NoError(t, err)
	back, err := Decode(snap)
	require.NoError(t, err)

	assert.Equal(t, s.Bins(), back.Bins())
	again, err := Encode(back)
	require.NoError(t, err)
	if diff := cmp.Diff(snap, again); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}

	r, ok := back.ResultsForBin("PT_0.00_1000.00")
	require.True(t, ok)
	v, err := r.Value("S")
	require.NoError(t, err)
	assert.InDelta(t, 1.5, v, 1e-12)
}

func TestDraw(t *testing.T) {
	s := New("PT", "pt")
	s.AdoptResult(binResult("x", 1, 2), Bin{Variable: "PT", Low: 0, High: 1000})
	s.AdoptResult(binResult("y", 3, 5), Bin{Variable: "PT", Low: 1000, High: 2000})

	p, err := Draw(s, DrawOptions{SubResults: []string{"a"}})
	require.NoError(t, err)
	assert.Equal(t, "pt", p.Title.Text)

	pts := s.errorPoints("S", "")
	require.Len(t, pts.XYs, 2)
	assert.Equal(t, 1500.0, pts.XYs[1].X)
	assert.InDelta(t, 4.0, pts.XYs[1].Y, 1e-12)

	_, err = Draw(s, DrawOptions{Quantity: "B"})
	assert.True(t, errors.Is(err, ErrNothingToDraw))
}

func TestPrint(t *testing.T) {
	s := New("PT", "pt")
	s.AdoptResult(binResult("x", 1, 2), "b1")

	var buf bytes.Buffer
	Print(&buf, s, "")
	assert.Contains(t, buf.String(), "spectra PT (pt): 1 bins")
	assert.Contains(t, buf.String(), "--- bin b1")
	assert.Contains(t, buf.String(), "-- S : 1.5")
}
