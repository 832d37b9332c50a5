// Package dbstructure models the database structure the build agent edits
// and the RFC 6902 operations it proposes against it.
package dbstructure

import (
	"fmt"
	"slices"
)

type ConstraintType string

const (
	ConstraintPrimaryKey ConstraintType = "PRIMARY KEY"
	ConstraintForeignKey ConstraintType = "FOREIGN KEY"
	ConstraintUnique     ConstraintType = "UNIQUE"
	ConstraintCheck      ConstraintType = "CHECK"
)

type Cardinality string

const (
	OneToOne  Cardinality = "ONE_TO_ONE"
	OneToMany Cardinality = "ONE_TO_MANY"
)

// Schema is the full structure of one building schema.
type Schema struct {
	Tables        map[string]*Table        `json:"tables"`
	Relationships map[string]*Relationship `json:"relationships"`
}

type Table struct {
	Name        string                 `json:"name"`
	Comment     string                 `json:"comment,omitempty"`
	Columns     map[string]*Column     `json:"columns"`
	Indexes     map[string]*Index      `json:"indexes"`
	Constraints map[string]*Constraint `json:"constraints"`
}

type Column struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Default any    `json:"default,omitempty"`
	Check   string `json:"check,omitempty"`
	Primary bool   `json:"primary"`
	Unique  bool   `json:"unique"`
	NotNull bool   `json:"notNull"`
	Comment string `json:"comment,omitempty"`
}

type Index struct {
	Name    string   `json:"name"`
	Unique  bool     `json:"unique"`
	Columns []string `json:"columns"`
	Type    string   `json:"type,omitempty"`
}

type Constraint struct {
	Type             ConstraintType `json:"type"`
	Name             string         `json:"name"`
	ColumnName       string         `json:"columnName,omitempty"`
	ColumnNames      []string       `json:"columnNames,omitempty"`
	TargetTableName  string         `json:"targetTableName,omitempty"`
	TargetColumnName string         `json:"targetColumnName,omitempty"`
	UpdateConstraint string         `json:"updateConstraint,omitempty"`
	DeleteConstraint string         `json:"deleteConstraint,omitempty"`
	Detail           string         `json:"detail,omitempty"`
}

type Relationship struct {
	Name              string      `json:"name"`
	PrimaryTableName  string      `json:"primaryTableName"`
	PrimaryColumnName string      `json:"primaryColumnName"`
	ForeignTableName  string      `json:"foreignTableName"`
	ForeignColumnName string      `json:"foreignColumnName"`
	Cardinality       Cardinality `json:"cardinality"`
	UpdateConstraint  string      `json:"updateConstraint,omitempty"`
	DeleteConstraint  string      `json:"deleteConstraint,omitempty"`
}

// Empty returns a schema with no tables or relationships.
func Empty() Schema {
	return Schema{
		Tables:        map[string]*Table{},
		Relationships: map[string]*Relationship{},
	}
}

// normalized returns a copy whose maps are non-nil, so that JSON pointers
// like /tables/users/columns/id can be added to a freshly created table.
func (s Schema) normalized() Schema {
	out := Schema{
		Tables:        make(map[string]*Table, len(s.Tables)),
		Relationships: make(map[string]*Relationship, len(s.Relationships)),
	}
	for k, t := range s.Tables {
		if t == nil {
			out.Tables[k] = nil
			continue
		}
		tc := *t
		if tc.Columns == nil {
			tc.Columns = map[string]*Column{}
		}
		if tc.Indexes == nil {
			tc.Indexes = map[string]*Index{}
		}
		if tc.Constraints == nil {
			tc.Constraints = map[string]*Constraint{}
		}
		out.Tables[k] = &tc
	}
	for k, r := range s.Relationships {
		out.Relationships[k] = r
	}
	return out
}

// Validate checks the structural invariants a patched schema must keep:
// every entry is keyed by its own name and every reference resolves.
func (s Schema) Validate() error {
	for key, t := range s.Tables {
		if t == nil {
			return fmt.Errorf("table %q is null", key)
		}
		if t.Name == "" || t.Name != key {
			return fmt.Errorf("table %q: name %q does not match key", key, t.Name)
		}
		for ckey, c := range t.Columns {
			if c == nil {
				return fmt.Errorf("table %q: column %q is null", key, ckey)
			}
			if c.Name == "" || c.Name != ckey {
				return fmt.Errorf("table %q: column %q: name %q does not match key", key, ckey, c.Name)
			}
			if c.Type == "" {
				return fmt.Errorf("table %q: column %q: type is required", key, ckey)
			}
		}
		for ikey, idx := range t.Indexes {
			if idx == nil {
				return fmt.Errorf("table %q: index %q is null", key, ikey)
			}
			for _, col := range idx.Columns {
				if _, ok := t.Columns[col]; !ok {
					return fmt.Errorf("table %q: index %q references unknown column %q", key, ikey, col)
				}
			}
		}
		for ckey, con := range t.Constraints {
			if con == nil {
				return fmt.Errorf("table %q: constraint %q is null", key, ckey)
			}
			if con.Type == ConstraintForeignKey {
				if _, ok := s.Tables[con.TargetTableName]; !ok {
					return fmt.Errorf("table %q: constraint %q targets unknown table %q", key, ckey, con.TargetTableName)
				}
			}
		}
	}
	for key, r := range s.Relationships {
		if r == nil {
			return fmt.Errorf("relationship %q is null", key)
		}
		if err := s.checkColumn(r.PrimaryTableName, r.PrimaryColumnName); err != nil {
			return fmt.Errorf("relationship %q: %w", key, err)
		}
		if err := s.checkColumn(r.ForeignTableName, r.ForeignColumnName); err != nil {
			return fmt.Errorf("relationship %q: %w", key, err)
		}
	}
	return nil
}

func (s Schema) checkColumn(table, column string) error {
	t, ok := s.Tables[table]
	if !ok || t == nil {
		return fmt.Errorf("unknown table %q", table)
	}
	if _, ok := t.Columns[column]; !ok {
		return fmt.Errorf("unknown column %q.%q", table, column)
	}
	return nil
}

// TableNames returns the table names in sorted order.
func (s Schema) TableNames() []string {
	names := make([]string, 0, len(s.Tables))
	for name := range s.Tables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
