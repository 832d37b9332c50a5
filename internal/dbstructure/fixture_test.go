package dbstructure

func fixtureSchema() Schema {
	return Schema{
		Tables: map[string]*Table{
			"users": {
				Name:    "users",
				Comment: "Registered users",
				Columns: map[string]*Column{
					"id":    {Name: "id", Type: "uuid", Primary: true, NotNull: true},
					"email": {Name: "email", Type: "text", Unique: true},
				},
				Indexes:     map[string]*Index{},
				Constraints: map[string]*Constraint{},
			},
			"posts": {
				Name: "posts",
				Columns: map[string]*Column{
					"id":      {Name: "id", Type: "uuid", Primary: true, NotNull: true},
					"user_id": {Name: "user_id", Type: "uuid", NotNull: true},
				},
				Indexes:     map[string]*Index{},
				Constraints: map[string]*Constraint{},
			},
		},
		Relationships: map[string]*Relationship{
			"posts_user_id_fk": {
				Name:              "posts_user_id_fk",
				PrimaryTableName:  "users",
				PrimaryColumnName: "id",
				ForeignTableName:  "posts",
				ForeignColumnName: "user_id",
				Cardinality:       OneToMany,
			},
		},
	}
}

func op(kind, path, value string) Operation {
	o := Operation{Op: kind, Path: path}
	if value != "" {
		o.Value = []byte(value)
	}
	return o
}
