package database

// Migrations returns the schema history in version order.
func Migrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_users_table",
			Steps: []Step{
				CreateTable{
					Table: "users",
					Columns: []Column{
						{Name: "id", Type: Integer, PrimaryKey: true},
						{Name: "username", Type: String, NotNull: true},
					},
				},
			},
		},
		{
			Version: 2,
			Name:    "create_posts_table",
			Steps: []Step{
				CreateTable{
					Table: "posts",
					Columns: []Column{
						{Name: "id", Type: Integer, PrimaryKey: true},
						{Name: "message", Type: String, NotNull: true},
						{Name: "user_id", Type: Integer, DefaultNull: true},
					},
					ForeignKeys: []ForeignKey{
						{
							Name:      "fk_posts_user_id",
							Column:    "user_id",
							RefTable:  "users",
							RefColumn: "id",
							OnUpdate:  Cascade,
							OnDelete:  NoAction,
						},
					},
				},
			},
		},
		{
			Version: 3,
			Name:    "idx_posts_user_id",
			Steps: []Step{
				CreateIndex{Name: "idx_posts_user_id", Table: "posts", Columns: []string{"user_id"}},
			},
		},
	}
}
