// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// PostsTable represents the 'posts' table
type PostsTable struct {
	Table     string
	ID        string
	OwnerID   string
	Body      string
	HasImage  string
	CreatedAt string
}

// Posts is the schema definition for posts
var Posts = PostsTable{
	Table:     "posts",
	ID:        "id",
	OwnerID:   "owner_id",
	Body:      "body",
	HasImage:  "has_image",
	CreatedAt: "created_at",
}

// Columns lists every column in table order, matching the INSERT argument order.
func (t PostsTable) Columns() []string {
	return []string{t.ID, t.OwnerID, t.Body, t.HasImage, t.CreatedAt}
}
