// Package catalog describes the table/index lookup contract executors
// and the optimizer depend on. No persistence is implemented here:
// durable catalog storage is outside this substrate's scope.
package catalog

import (
	"github.com/alderlake-db/alderdb/pkg/tableheap"
	"github.com/alderlake-db/alderdb/pkg/tuple"
)

// TableOID identifies a table independent of its name.
type TableOID uint32

// Index is the handle executors and the optimizer use to probe an
// index without depending on any particular index implementation.
// pkg/hashindex.HashIndex satisfies this interface structurally.
type Index interface {
	Get(key int64) (tuple.RID, bool, error)
	Insert(key int64, rid tuple.RID) error
	Remove(key int64) error
}

// TableInfo describes one cataloged table.
type TableInfo struct {
	OID    TableOID
	Name   string
	Schema *tuple.Schema
	Heap   tableheap.TableHeap
}

// IndexInfo describes one cataloged index over a table.
type IndexInfo struct {
	Name      string
	TableName string
	KeySchema *tuple.Schema
	KeyAttrs  []int
	Index     Index
}

// Catalog is the lookup surface executors and the optimizer consume.
type Catalog interface {
	TableByOID(oid TableOID) (*TableInfo, bool)
	TableByName(name string) (*TableInfo, bool)
	IndexesForTable(tableName string) []*IndexInfo
}
