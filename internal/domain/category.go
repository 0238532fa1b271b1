package domain

import "time"

// Category is a topical bucket used to route tickets.
type Category struct {
	ID          int64
	Name        string
	Description string
	Color       string
	CreatedAt   time.Time
}

// DefaultCategoryColor is used when a ticket has no category.
const DefaultCategoryColor = "#6B7280"

// DefaultCategories seeds an empty category table.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Technical Support", Description: "Technical issues and troubleshooting", Color: "#3B82F6"},
		{Name: "Billing", Description: "Billing and payment related inquiries", Color: "#10B981"},
		{Name: "General", Description: "General questions and support", Color: DefaultCategoryColor},
		{Name: "Feature Request", Description: "Requests for new features or improvements", Color: "#8B5CF6"},
		{Name: "Bug Report", Description: "Report bugs and issues with the product", Color: "#EF4444"},
	}
}
