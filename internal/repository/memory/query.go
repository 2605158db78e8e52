package memory

import (
	"fmt"
	"sort"
	"time"

	"research-rag-be/internal/repository/specification"
)

// columns maps gorm column names to row accessors so the same
// specifications work against both stores.
type columns[T any] map[string]func(row T) interface{}

func (c columns[T]) get(column string) (func(T) interface{}, error) {
	get, ok := c[column]
	if !ok {
		return nil, fmt.Errorf("memory: unknown column %q", column)
	}
	return get, nil
}

// selectRows applies filter, ordering and pagination specifications.
// Column names are resolved before any row is touched, so an invalid
// specification fails on an empty table too.
func selectRows[T any](rows []T, cols columns[T], specs ...specification.Specification) ([]T, error) {
	type filter struct {
		get  func(T) interface{}
		want interface{}
	}
	type order struct {
		get  func(T) interface{}
		desc bool
	}
	var (
		filters []filter
		orders  []order
		page    *specification.Pagination
	)

	eq := func(column string, want interface{}) error {
		get, err := cols.get(column)
		if err != nil {
			return err
		}
		filters = append(filters, filter{get: get, want: want})
		return nil
	}

	for _, spec := range specs {
		var err error
		switch s := spec.(type) {
		case specification.ByID:
			err = eq("id", s.ID)
		case specification.ByUserID:
			err = eq("user_id", s.UserID)
		case specification.ByStatus:
			err = eq("status", s.Status)
		case specification.ByContentHash:
			err = eq("content_hash", s.Hash)
		case specification.ByDocumentID:
			err = eq("document_id", s.DocumentID)
		case specification.ByChunkType:
			err = eq("chunk_type", s.ChunkType)
		case specification.ByChatSessionID:
			err = eq("chat_session_id", s.ChatSessionID)
		case specification.OrderBy:
			var get func(T) interface{}
			if get, err = cols.get(s.Field); err == nil {
				orders = append(orders, order{get: get, desc: s.Desc})
			}
		case specification.Pagination:
			p := s
			page = &p
		default:
			return nil, fmt.Errorf("memory: unsupported specification %T", spec)
		}
		if err != nil {
			return nil, err
		}
	}

	out := make([]T, 0, len(rows))
	for _, row := range rows {
		keep := true
		for _, f := range filters {
			if f.get(row) != f.want {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, row)
		}
	}

	if len(orders) > 0 {
		sort.SliceStable(out, func(i, j int) bool {
			for _, o := range orders {
				c := compare(o.get(out[i]), o.get(out[j]))
				if c == 0 {
					continue
				}
				if o.desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}

	if page != nil {
		start := page.Offset
		if start > len(out) {
			start = len(out)
		}
		out = out[start:]
		if page.Limit > 0 && page.Limit < len(out) {
			out = out[:page.Limit]
		}
	}
	return out, nil
}

func compare(a, b interface{}) int {
	switch x := a.(type) {
	case int:
		y := b.(int)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	case string:
		y := b.(string)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	case time.Time:
		y := b.(time.Time)
		switch {
		case x.Before(y):
			return -1
		case x.After(y):
			return 1
		}
	}
	return 0
}
