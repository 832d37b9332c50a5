package dbstructure

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ConvertSchemaToText renders s as the plain-text schema description the
// build agent reads. Output is sorted by name so identical schemas render
// identically.
func ConvertSchemaToText(s Schema) string {
	var b strings.Builder
	b.WriteString("FULL DATABASE SCHEMA:\n\n")
	b.WriteString("TABLES:\n\n")

	if len(s.Tables) == 0 {
		b.WriteString("No tables defined.\n")
	}
	for _, name := range s.TableNames() {
		t := s.Tables[name]
		if t == nil {
			continue
		}
		writeTable(&b, t)
	}

	if len(s.Relationships) > 0 {
		b.WriteString("RELATIONSHIPS:\n\n")
		for _, name := range slices.Sorted(maps.Keys(s.Relationships)) {
			r := s.Relationships[name]
			if r == nil {
				continue
			}
			card := r.Cardinality
			if card == "" {
				card = OneToMany
			}
			fmt.Fprintf(&b, "- %s.%s -> %s.%s (%s)\n",
				r.PrimaryTableName, r.PrimaryColumnName, r.ForeignTableName, r.ForeignColumnName, card)
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func writeTable(b *strings.Builder, t *Table) {
	fmt.Fprintf(b, "Table: %s\n", t.Name)
	if t.Comment != "" {
		fmt.Fprintf(b, "Description: %s\n", t.Comment)
	}

	b.WriteString("Columns:\n")
	var primary []string
	for _, cname := range slices.Sorted(maps.Keys(t.Columns)) {
		c := t.Columns[cname]
		if c == nil {
			continue
		}
		nullable := "nullable"
		if c.NotNull {
			nullable = "not nullable"
		}
		fmt.Fprintf(b, "- %s: %s (%s)", c.Name, c.Type, nullable)
		if c.Default != nil {
			fmt.Fprintf(b, ", default: %v", c.Default)
		}
		if c.Unique {
			b.WriteString(", unique")
		}
		if c.Check != "" {
			fmt.Fprintf(b, ", check: %s", c.Check)
		}
		if c.Comment != "" {
			fmt.Fprintf(b, " - %s", c.Comment)
		}
		b.WriteString("\n")
		if c.Primary {
			primary = append(primary, c.Name)
		}
	}

	for _, con := range t.Constraints {
		if con != nil && con.Type == ConstraintPrimaryKey {
			primary = appendUnique(primary, con.ColumnName)
			for _, col := range con.ColumnNames {
				primary = appendUnique(primary, col)
			}
		}
	}
	if len(primary) > 0 {
		slices.Sort(primary)
		fmt.Fprintf(b, "\nPrimary Key: %s\n", strings.Join(primary, ", "))
	}

	if len(t.Indexes) > 0 {
		b.WriteString("\nIndexes:\n")
		for _, iname := range slices.Sorted(maps.Keys(t.Indexes)) {
			idx := t.Indexes[iname]
			if idx == nil {
				continue
			}
			unique := ""
			if idx.Unique {
				unique = "UNIQUE "
			}
			fmt.Fprintf(b, "- %s%s (%s)\n", unique, idx.Name, strings.Join(idx.Columns, ", "))
		}
	}
	b.WriteString("\n")
}

func appendUnique(list []string, v string) []string {
	if v == "" || slices.Contains(list, v) {
		return list
	}
	return append(list, v)
}
