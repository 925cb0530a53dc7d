package repository

import (
	"context"
	"fmt"
)

// collection binds a DocumentStore collection to the entity type stored in it.
type collection[T any] struct {
	store DocumentStore
	name  string
}

func (c collection[T]) get(ctx context.Context, id string) (*T, bool, error) {
	if id == "" {
		return nil, false, nil
	}
	doc, ok, err := c.store.Get(ctx, c.name, id)
	if err != nil || !ok {
		return nil, ok, err
	}
	var out T
	if err := Decode(doc, &out); err != nil {
		return nil, false, fmt.Errorf("%s/%s: %w", c.name, id, err)
	}
	return &out, true, nil
}

func (c collection[T]) set(ctx context.Context, id string, v T) error {
	doc, err := Encode(v)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, c.name, id, doc)
}

func (c collection[T]) add(ctx context.Context, v T) (string, error) {
	doc, err := Encode(v)
	if err != nil {
		return "", err
	}
	return c.store.AddAutoID(ctx, c.name, doc)
}

func (c collection[T]) update(ctx context.Context, id string, patch Document) error {
	return c.store.Update(ctx, c.name, id, patch)
}

func (c collection[T]) all(ctx context.Context) ([]T, error) {
	docs, err := c.store.List(ctx, c.name)
	if err != nil {
		return nil, err
	}
	return decodeAll[T](c.name, docs)
}

func (c collection[T]) where(ctx context.Context, field string, value any) ([]T, error) {
	docs, err := c.store.QueryEquals(ctx, c.name, field, value)
	if err != nil {
		return nil, err
	}
	return decodeAll[T](c.name, docs)
}

func (c collection[T]) in(ctx context.Context, field string, values []string) ([]T, error) {
	docs, err := c.store.QueryIn(ctx, c.name, field, values)
	if err != nil {
		return nil, err
	}
	return decodeAll[T](c.name, docs)
}

func decodeAll[T any](name string, docs []Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var v T
		if err := Decode(doc, &v); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out = append(out, v)
	}
	return out, nil
}
