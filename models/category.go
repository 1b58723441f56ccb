package models

import "time"

type Category struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:255;not null"`
	Slug      string `gorm:"size:255;uniqueIndex"`
	ImageURL  string `gorm:"size:512"`
	ParentID  *uint  `gorm:"index"`
	CreatedAt time.Time
}

// CategoryNode is a category with its resolved children, assembled in Go
// from the flat parent_id rows.
type CategoryNode struct {
	Category
	Children []*CategoryNode
}

// BuildCategoryTree indexes the flat rows by id and attaches each node to
// its parent. Nodes with no parent, or whose parent is not in the input,
// become roots. Sibling order follows the input order.
func BuildCategoryTree(categories []Category) []*CategoryNode {
	nodes := make(map[uint]*CategoryNode, len(categories))
	for i := range categories {
		nodes[categories[i].ID] = &CategoryNode{Category: categories[i]}
	}

	var roots []*CategoryNode
	for i := range categories {
		node := nodes[categories[i].ID]
		if pid := categories[i].ParentID; pid != nil {
			if parent, ok := nodes[*pid]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}
