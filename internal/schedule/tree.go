package schedule

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/hashicorp/go-set/v3"
)

// Node places an item in a work tree. Parent is empty for roots. When
// Accumulate is set the item's work figures include those of its children.
type Node struct {
	Item       Item
	Parent     string
	Accumulate bool
}

// Forest is a flat store of items linked by parent id. Nodes refer to each
// other only by index, so the structure holds no pointers between items.
type Forest struct {
	nodes    []Node
	index    map[string]int
	children [][]int
}

// NewForest indexes nodes and checks that ids are unique, every parent exists
// and no parent chain loops back on itself.
func NewForest(nodes []Node) (*Forest, error) {
	forest := &Forest{
		nodes:    slices.Clone(nodes),
		index:    make(map[string]int, len(nodes)),
		children: make([][]int, len(nodes)),
	}

	for idx, node := range forest.nodes {
		if _, dup := forest.index[node.Item.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateItem, node.Item.ID)
		}

		forest.index[node.Item.ID] = idx
	}

	for idx, node := range forest.nodes {
		if node.Parent == "" {
			continue
		}

		parent, ok := forest.index[node.Parent]
		if !ok {
			return nil, fmt.Errorf("%w: %s (parent of %s)", ErrUnknownParent, node.Parent, node.Item.ID)
		}

		forest.children[parent] = append(forest.children[parent], idx)
	}

	for idx := range forest.nodes {
		err := forest.checkAncestry(idx)
		if err != nil {
			return nil, err
		}

		slices.SortFunc(forest.children[idx], func(a, b int) int {
			return strings.Compare(forest.nodes[a].Item.ID, forest.nodes[b].Item.ID)
		})
	}

	return forest, nil
}

func (f *Forest) checkAncestry(idx int) error {
	seen := set.New[int](4)

	for cur, ok := idx, true; ok; cur, ok = f.parentOf(cur) {
		if !seen.Insert(cur) {
			return fmt.Errorf("%w: %s", ErrCycle, f.nodes[idx].Item.ID)
		}
	}

	return nil
}

func (f *Forest) parentOf(idx int) (int, bool) {
	parent := f.nodes[idx].Parent
	if parent == "" {
		return 0, false
	}

	p, ok := f.index[parent]

	return p, ok
}

// Len returns the number of items.
func (f *Forest) Len() int {
	return len(f.nodes)
}

// Children returns the ids of the direct children of id, sorted.
func (f *Forest) Children(id string) ([]string, error) {
	idx, ok := f.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}

	ids := make([]string, 0, len(f.children[idx]))
	for _, child := range f.children[idx] {
		ids = append(ids, f.nodes[child].Item.ID)
	}

	return ids, nil
}

// Aggregate returns the item with id. For accumulating items WCET and Actual
// are the item's own values plus the aggregated values of all children, and
// Progress is the children's progress weighted by their WCET. Without child
// work the item's own progress is kept.
func (f *Forest) Aggregate(id string) (Item, error) {
	idx, ok := f.index[id]
	if !ok {
		return Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}

	return f.aggregate(idx), nil
}

func (f *Forest) aggregate(idx int) Item {
	node := f.nodes[idx]
	item := node.Item

	if !node.Accumulate || len(f.children[idx]) == 0 {
		return item
	}

	var (
		childWork time.Duration
		weighted  float64
	)

	for _, childIdx := range f.children[idx] {
		child := f.aggregate(childIdx)

		item.WCET = addSat(item.WCET, child.WCET)
		item.Actual = addSat(item.Actual, child.Actual)
		childWork = addSat(childWork, child.WCET)
		weighted += clampUnit(child.Progress) * float64(child.WCET)
	}

	if childWork > 0 {
		item.Progress = clampUnit(weighted / float64(childWork))
	}

	return item
}

// Items returns every item aggregated, in the order the nodes were given.
func (f *Forest) Items() []Item {
	items := make([]Item, len(f.nodes))
	for idx := range f.nodes {
		items[idx] = f.aggregate(idx)
	}

	return items
}

// Schedulable returns the aggregated items that compete for the worker at t0:
// not suspended, not done, and not already counted inside an accumulating
// ancestor.
func (f *Forest) Schedulable(t0 time.Time) []Item {
	items := make([]Item, 0, len(f.nodes))

	for idx := range f.nodes {
		if f.folded(idx) {
			continue
		}

		item := f.aggregate(idx)
		if item.Suspended || item.State(t0) == Done {
			continue
		}

		items = append(items, item)
	}

	return items
}

// folded reports whether some ancestor of idx accumulates its children.
func (f *Forest) folded(idx int) bool {
	for cur, ok := f.parentOf(idx); ok; cur, ok = f.parentOf(cur) {
		if f.nodes[cur].Accumulate {
			return true
		}
	}

	return false
}
