package service

import (
	"sort"
	"strings"

	"github.com/subtrack-cli/subtrack/internal/model"
	"github.com/subtrack-cli/subtrack/internal/store"
)

// AddCategory stores a new category at the end of the sort order.
func (s *Service) AddCategory(cat model.Category) (model.Category, error) {
	if strings.TrimSpace(cat.Name) == "" {
		return model.Category{}, validationErr("category name is blank")
	}

	now := s.now()
	cat.ID = newID()
	cat.CreatedAt = now
	cat.UpdatedAt = now

	_, err := s.store.Update(func(doc store.Document) (store.Document, error) {
		maxOrder := -1
		for _, existing := range doc.Categories {
			if existing.SortOrder > maxOrder {
				maxOrder = existing.SortOrder
			}
		}
		cat.SortOrder = maxOrder + 1
		doc.Categories = append(doc.Categories, cat)
		return doc, nil
	})
	if err != nil {
		return model.Category{}, err
	}
	return cat, nil
}

// UpdateCategory replaces the stored category with the same id,
// preserving its sort order.
func (s *Service) UpdateCategory(cat model.Category) error {
	if err := requireID(cat.ID); err != nil {
		return err
	}

	found := false
	_, err := s.store.Update(func(doc store.Document) (store.Document, error) {
		found = false
		for i, existing := range doc.Categories {
			if existing.ID == cat.ID {
				cat.CreatedAt = existing.CreatedAt
				cat.SortOrder = existing.SortOrder
				cat.UpdatedAt = s.now()
				doc.Categories[i] = cat
				found = true
				break
			}
		}
		return doc, nil
	})
	if err != nil {
		return err
	}
	if !found {
		return s.notFound("category", cat.ID)
	}
	return nil
}

// DeleteCategory removes a category and detaches it from any
// subscriptions referencing it.
func (s *Service) DeleteCategory(id string) error {
	if err := requireID(id); err != nil {
		return err
	}

	found := false
	_, err := s.store.Update(func(doc store.Document) (store.Document, error) {
		found = false
		for i, existing := range doc.Categories {
			if existing.ID == id {
				doc.Categories = append(doc.Categories[:i], doc.Categories[i+1:]...)
				found = true
				break
			}
		}
		if found {
			for i := range doc.Subscriptions {
				if doc.Subscriptions[i].CategoryID == id {
					doc.Subscriptions[i].CategoryID = ""
				}
			}
		}
		return doc, nil
	})
	if err != nil {
		return err
	}
	if !found {
		return s.notFound("category", id)
	}
	return nil
}

// ReorderCategories assigns sort orders 0..n-1 to the listed ids in the
// given order, in one transaction. Categories absent from the list keep
// their stored order untouched.
func (s *Service) ReorderCategories(ids []string) error {
	if len(ids) == 0 {
		return validationErr("empty reorder list")
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if err := requireID(id); err != nil {
			return err
		}
		if _, dup := seen[id]; dup {
			return validationErr("duplicate id %s in reorder list", id)
		}
		seen[id] = struct{}{}
	}

	_, err := s.store.Update(func(doc store.Document) (store.Document, error) {
		now := s.now()
		for order, id := range ids {
			for i := range doc.Categories {
				if doc.Categories[i].ID == id {
					doc.Categories[i].SortOrder = order
					doc.Categories[i].UpdatedAt = now
					break
				}
			}
		}
		return doc, nil
	})
	return err
}

// Categories returns all categories sorted by their sort order.
func (s *Service) Categories() []model.Category {
	cats := s.store.Read().Categories
	sort.Slice(cats, func(i, j int) bool {
		if cats[i].SortOrder != cats[j].SortOrder {
			return cats[i].SortOrder < cats[j].SortOrder
		}
		return cats[i].ID < cats[j].ID
	})
	return cats
}
