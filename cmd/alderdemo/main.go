// Command alderdemo exercises the storage and execution substrate end
// to end over a real data file: buffer pool, disk scheduler, the
// copy-on-write trie store, the extendible hash index, the Volcano
// executors, and the three optimizer rewrite rules. It opens no
// network listener; this is a one-shot walkthrough, not a server.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/alderlake-db/alderdb/pkg/catalog"
	"github.com/alderlake-db/alderdb/pkg/exec"
	"github.com/alderlake-db/alderdb/pkg/expr"
	"github.com/alderlake-db/alderdb/pkg/hashindex"
	"github.com/alderlake-db/alderdb/pkg/optimizer"
	"github.com/alderlake-db/alderdb/pkg/storage"
	"github.com/alderlake-db/alderdb/pkg/trie"
	"github.com/alderlake-db/alderdb/pkg/tuple"
	"github.com/alderlake-db/alderdb/pkg/txn"
)

func main() {
	dataFile := flag.String("data-file", "./alderdemo.db", "Backing file for the buffer pool's page store")
	bufferSize := flag.Int("buffer-size", 64, "Buffer pool size in pages (1 page = 4KB)")
	lruK := flag.Int("lru-k", 2, "K for the buffer pool's LRU-K replacer")
	flag.Parse()

	disk, err := storage.NewDiskManager(*dataFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open data file: %v\n", err)
		os.Exit(1)
	}
	scheduler := storage.NewDiskScheduler(disk)
	defer scheduler.Shutdown()

	pool := storage.NewBufferPool(*bufferSize, scheduler, *lruK)

	fmt.Println("--- Trie Store ---")
	runTrieDemo()

	fmt.Println("\n--- Extendible Hash Index ---")
	if err := runHashIndexDemo(pool); err != nil {
		fmt.Fprintf(os.Stderr, "hash index demo failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\n--- Volcano Executors ---")
	if err := runExecutorDemo(); err != nil {
		fmt.Fprintf(os.Stderr, "executor demo failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\n--- Optimizer Rewrite Rules ---")
	runOptimizerDemo()

	if err := pool.FlushAllPages(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to flush buffer pool: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("\n--- Buffer Pool Stats ---")
	for k, v := range pool.Stats() {
		fmt.Printf("  %s: %v\n", k, v)
	}
}

func runTrieDemo() {
	store := trie.NewStore()
	store.Put("alice", int64(30))
	store.Put("bob", int64(25))

	if guard, ok := trie.Fetch[int64](store, "alice"); ok {
		fmt.Printf("  alice -> %d\n", guard.Value())
	}

	store.Remove("bob")
	if _, ok := trie.Fetch[int64](store, "bob"); !ok {
		fmt.Println("  bob removed")
	}
}

func runHashIndexDemo(pool *storage.BufferPool) error {
	idx, err := hashindex.NewHashIndex(pool)
	if err != nil {
		return fmt.Errorf("create hash index: %w", err)
	}

	for i := int64(0); i < 10; i++ {
		rid := tuple.RID{PageID: 1, SlotID: uint32(i)}
		if err := idx.Insert(i, rid); err != nil {
			return fmt.Errorf("insert %d: %w", i, err)
		}
	}

	rid, ok, err := idx.Get(7)
	if err != nil {
		return fmt.Errorf("get 7: %w", err)
	}
	if !ok {
		return fmt.Errorf("expected key 7 to be present")
	}
	fmt.Printf("  key 7 -> rid %s\n", rid)

	if err := idx.Remove(7); err != nil {
		return fmt.Errorf("remove 7: %w", err)
	}
	if _, ok, _ := idx.Get(7); ok {
		return fmt.Errorf("key 7 should have been removed")
	}
	fmt.Println("  key 7 removed")
	return nil
}

func peopleSchema() *tuple.Schema {
	return tuple.NewSchema([]tuple.Column{
		{Name: "id", Type: tuple.TypeInt64},
		{Name: "name", Type: tuple.TypeString},
		{Name: "age", Type: tuple.TypeInt64},
	})
}

func runExecutorDemo() error {
	schema := peopleSchema()
	heap := newMemTableHeap()

	people := []struct {
		id   int64
		name string
		age  int64
	}{
		{1, "alice", 30},
		{2, "bob", 25},
		{3, "carol", 41},
		{4, "dave", 19},
	}

	rows := make([]*tuple.Tuple, 0, len(people))
	for _, p := range people {
		row, err := tuple.NewTuple(schema, []*tuple.Value{
			tuple.NewValue(p.id), tuple.NewValue(p.name), tuple.NewValue(p.age),
		})
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	insert := exec.NewInsertExecutor(exec.NewValuesExecutor(schema, rows), heap, nil, txn.InvalidTxnID)
	if err := insert.Init(); err != nil {
		return err
	}
	if _, _, ok, err := insert.Next(); err != nil || !ok {
		return fmt.Errorf("insert: ok=%v err=%v", ok, err)
	}
	fmt.Printf("  inserted %d rows\n", len(rows))

	predicate := &expr.Comparison{
		Op:    expr.OpGreaterEqual,
		Left:  &expr.ColumnRef{ColumnIndex: 2, Type: tuple.TypeInt64},
		Right: &expr.Constant{Value: tuple.NewValue(int64(25))},
	}
	scan := exec.NewSeqScanExecutor(heap, schema, predicate)
	orderBy := []exec.OrderKey{{Expr: &expr.ColumnRef{ColumnIndex: 2, Type: tuple.TypeInt64}, Desc: true}}
	top := exec.NewTopNExecutor(scan, 2, orderBy)

	if err := top.Init(); err != nil {
		return err
	}
	fmt.Println("  oldest 2 people aged >= 25:")
	for {
		row, _, ok, err := top.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		nameV, _ := row.GetValueAt(1)
		ageV, _ := row.GetValueAt(2)
		name, _ := nameV.AsString()
		age, _ := ageV.AsInt64()
		fmt.Printf("    %s (%d)\n", name, age)
	}
	return nil
}

func runOptimizerDemo() {
	schema := peopleSchema()
	idx := &catalog.IndexInfo{Name: "people_id_idx", TableName: "people", KeyAttrs: []int{0}}
	cat := newMemCatalog()
	cat.indexes["people"] = []*catalog.IndexInfo{idx}

	orderBy := []exec.OrderKey{{Expr: &expr.ColumnRef{ColumnIndex: 2, Type: tuple.TypeInt64}}}
	plan := optimizer.PlanNode(&optimizer.LimitNode{
		N: 5,
		Child: &optimizer.SortNode{
			OrderBy: orderBy,
			Child: &optimizer.SeqScanNode{
				Table:  "people",
				Schema: schema,
				Predicate: &expr.Comparison{
					Op:    expr.OpEqual,
					Left:  &expr.ColumnRef{ColumnIndex: 0, Type: tuple.TypeInt64},
					Right: &expr.Constant{Value: tuple.NewValue(int64(1))},
				},
			},
		},
	})

	fmt.Printf("  before: %s\n", describePlan(plan))
	rewritten := optimizer.Optimize(plan, cat)
	fmt.Printf("  after:  %s\n", describePlan(rewritten))
}

func describePlan(n optimizer.PlanNode) string {
	switch p := n.(type) {
	case *optimizer.TopNNode:
		return fmt.Sprintf("TopN(n=%d){%s}", p.N, describePlan(p.Child))
	case *optimizer.LimitNode:
		return fmt.Sprintf("Limit(n=%d){%s}", p.N, describePlan(p.Child))
	case *optimizer.SortNode:
		return fmt.Sprintf("Sort{%s}", describePlan(p.Child))
	case *optimizer.IndexScanNode:
		return fmt.Sprintf("IndexScan(%s, key=%d)", p.IndexName, p.Key)
	case *optimizer.SeqScanNode:
		return fmt.Sprintf("SeqScan(%s)", p.Table)
	default:
		return fmt.Sprintf("%T", n)
	}
}
