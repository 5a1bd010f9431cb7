package ntuple

import (
	"context"
	"fmt"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/riofs"
	"go-hep.org/x/hep/groot/rtree"
)

// Tree is a Source backed by a TTree in a ROOT file.
type Tree struct {
	f    *riofs.File
	t    rtree.Tree
	name string
}

// Open opens the tree at treePath inside the ROOT file at path.
func Open(path, treePath string) (*Tree, error) {
	if treePath == "" {
		treePath = DefaultTreePath
	}
	f, err := groot.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ntuple: could not open ROOT file: %w", err)
	}

	obj, err := riofs.Dir(f).Get(treePath)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("ntuple: could not retrieve %q from %q: %w", treePath, path, err)
	}
	t, ok := obj.(rtree.Tree)
	if !ok {
		f.Close()
		return nil, fmt.Errorf("ntuple: %q in %q is a %s, not a tree", treePath, path, obj.Class())
	}
	return &Tree{f: f, t: t, name: t.Name()}, nil
}

func (t *Tree) Close() error   { return t.f.Close() }
func (t *Tree) Name() string   { return t.name }
func (t *Tree) Entries() int64 { return t.t.Entries() }

func (t *Tree) Branches() []string {
	var names []string
	for _, b := range t.t.Branches() {
		names = append(names, b.Name())
	}
	return names
}

func (t *Tree) Scan(ctx context.Context, branches []string, fn func(Row) error) error {
	if err := CheckBranches(t, branches...); err != nil {
		return err
	}

	want := make(map[string]bool, len(branches))
	for _, b := range branches {
		want[b] = true
	}
	var rvars []rtree.ReadVar
	for _, rv := range rtree.NewReadVars(t.t) {
		if want[rv.Name] && (rv.Leaf == "" || rv.Leaf == rv.Name) {
			rvars = append(rvars, rv)
		}
	}

	r, err := rtree.NewReader(t.t, rvars)
	if err != nil {
		return fmt.Errorf("ntuple: could not create reader for %q: %w", t.name, err)
	}
	defer r.Close()

	row := make(Row, len(rvars))
	err = r.Read(func(rctx rtree.RCtx) error {
		if rctx.Entry%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		for _, rv := range rvars {
			v, err := scalar(rv.Value)
			if err != nil {
				return fmt.Errorf("branch %q: %w", rv.Name, err)
			}
			row[rv.Name] = v
		}
		return fn(row)
	})
	if err != nil {
		return fmt.Errorf("ntuple: could not read %q: %w", t.name, err)
	}
	return nil
}

func scalar(ptr any) (float64, error) {
	switch v := ptr.(type) {
	case *float64:
		return *v, nil
	case *float32:
		return float64(*v), nil
	case *int64:
		return float64(*v), nil
	case *int32:
		return float64(*v), nil
	case *int16:
		return float64(*v), nil
	case *int8:
		return float64(*v), nil
	case *uint64:
		return float64(*v), nil
	case *uint32:
		return float64(*v), nil
	case *uint16:
		return float64(*v), nil
	case *uint8:
		return float64(*v), nil
	case *bool:
		if *v {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("unsupported type %T", ptr)
}
