package controller

import (
	"context"

	"github.com/poiesic/seekr/core"
)

// SaveSearch stores the current query and filters under name.
func (c *Controller) SaveSearch(ctx context.Context, name string) (core.SavedSearch, error) {
	if c.saved == nil {
		return core.SavedSearch{}, ErrSavedSearchesDisabled
	}
	var (
		out   core.SavedSearch
		opErr error
	)
	if err := c.do(func() {
		out, opErr = c.saved.Save(ctx, core.SavedSearch{
			Name:    name,
			Query:   c.state.Query,
			Filters: c.state.Filters.Clone(),
		})
		if opErr == nil {
			c.refreshSaved(ctx)
		}
	}); err != nil {
		return core.SavedSearch{}, err
	}
	return out, opErr
}

// LoadSavedSearch applies the query and filters of a saved search, marks it
// as used and searches. The cache is cleared if the filters differ from the
// current ones.
func (c *Controller) LoadSavedSearch(ctx context.Context, id string) error {
	if c.saved == nil {
		return ErrSavedSearchesDisabled
	}
	var (
		wait  <-chan error
		opErr error
	)
	if err := c.do(func() {
		var s core.SavedSearch
		if s, opErr = c.saved.Touch(ctx, id); opErr != nil {
			return
		}
		c.refreshSaved(ctx)
		wait = c.load(s.Query, s.Filters)
	}); err != nil {
		return err
	}
	if opErr != nil {
		return opErr
	}
	return c.await(ctx, wait)
}

// UpdateSavedSearch applies fn to a saved search and stores the result.
func (c *Controller) UpdateSavedSearch(ctx context.Context, id string, fn func(*core.SavedSearch)) (core.SavedSearch, error) {
	if c.saved == nil {
		return core.SavedSearch{}, ErrSavedSearchesDisabled
	}
	var (
		out   core.SavedSearch
		opErr error
	)
	if err := c.do(func() {
		if out, opErr = c.saved.Update(ctx, id, fn); opErr == nil {
			c.refreshSaved(ctx)
		}
	}); err != nil {
		return core.SavedSearch{}, err
	}
	return out, opErr
}

// DeleteSavedSearch removes a saved search.
func (c *Controller) DeleteSavedSearch(ctx context.Context, id string) error {
	if c.saved == nil {
		return ErrSavedSearchesDisabled
	}
	var opErr error
	if err := c.do(func() {
		if opErr = c.saved.Delete(ctx, id); opErr == nil {
			c.refreshSaved(ctx)
		}
	}); err != nil {
		return err
	}
	return opErr
}

func (c *Controller) refreshSaved(ctx context.Context) {
	list, err := c.saved.List(ctx)
	if err != nil {
		c.logger.Warn("error listing saved searches", "err", err)
		return
	}
	c.state.SavedSearches = list
	c.notify()
}
