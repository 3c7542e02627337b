// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

package query

import (
	"reflect"
	"testing"
)

func TestWhereBuilder_Empty(t *testing.T) {
	wb := NewWhereBuilder()

	clause, args := wb.Build()
	if clause != "1=1" || len(args) != 0 {
		t.Errorf("Build() = %q, %v; want 1=1, []", clause, args)
	}
}

func TestWhereBuilder_Build(t *testing.T) {
	tests := []struct {
		name       string
		build      func(*WhereBuilder)
		wantClause string
		wantArgs   []interface{}
	}{
		{
			name:       "single clause",
			build:      func(wb *WhereBuilder) { wb.AddClause("DATE(record_date) = ?", "2024-05-10") },
			wantClause: "DATE(record_date) = ?",
			wantArgs:   []interface{}{"2024-05-10"},
		},
		{
			name: "date and users",
			build: func(wb *WhereBuilder) {
				wb.AddClause("DATE(record_date) = ?", "2024-05-10").AddUsers([]string{"7", "12"})
			},
			wantClause: "DATE(record_date) = ? AND user_id IN (?, ?)",
			wantArgs:   []interface{}{"2024-05-10", "7", "12"},
		},
		{
			name:       "empty users skipped",
			build:      func(wb *WhereBuilder) { wb.AddUsers(nil) },
			wantClause: "1=1",
			wantArgs:   []interface{}{},
		},
		{
			name:       "custom column",
			build:      func(wb *WhereBuilder) { wb.AddIn("id", []string{"a"}) },
			wantClause: "id IN (?)",
			wantArgs:   []interface{}{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wb := NewWhereBuilder()
			tt.build(wb)
			clause, args := wb.Build()
			if clause != tt.wantClause {
				t.Errorf("clause = %q, want %q", clause, tt.wantClause)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("args = %v, want %v", args, tt.wantArgs)
			}
		})
	}
}

func TestWhereBuilder_BuildWithPrefix(t *testing.T) {
	clause, _ := NewWhereBuilder().AddUsers([]string{"1"}).BuildWithPrefix()
	if clause != "WHERE user_id IN (?)" {
		t.Errorf("BuildWithPrefix() = %q", clause)
	}
}
