package record

import "context"

// The methods below address an area by name, which is how the HTTP and CLI
// front ends receive it.

func (b *Book) Add(ctx context.Context, area, word string) error {
	return b.Area(area).Add(ctx, word)
}

func (b *Book) Clear(ctx context.Context, area string) error {
	return b.Area(area).Clear(ctx)
}

func (b *Book) Words(ctx context.Context, area string) ([]string, error) {
	return b.Area(area).Words(ctx)
}

func (b *Book) Page(ctx context.Context, area string, index int) (Page, bool, error) {
	return b.Area(area).Page(ctx, index)
}

func (b *Book) WordCount(ctx context.Context, area string) (int, error) {
	return b.Area(area).WordCount(ctx)
}

func (b *Book) Summary(ctx context.Context, area string) (Summary, error) {
	return b.Area(area).Summary(ctx)
}

func (b *Book) Listen(ctx context.Context, area string, fn func(Event)) error {
	return b.Area(area).Listen(ctx, fn)
}
