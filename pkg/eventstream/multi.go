package eventstream

import (
	"context"
	"errors"
)

type multiPublisher []Publisher

// Multi returns a Publisher that publishes every event to each of pubs.
// Every publisher is attempted; their errors are joined.
func Multi(pubs ...Publisher) Publisher {
	return multiPublisher(pubs)
}

func (m multiPublisher) Publish(ctx context.Context, event *DocumentEvent) error {
	if event == nil {
		return ErrNilEvent
	}

	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m multiPublisher) Close() error {
	var errs []error
	for _, p := range m {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
