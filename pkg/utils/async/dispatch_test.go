package async_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/utils/async"
)

func TestDispatch(t *testing.T) {
	t.Run("runs handler in background", func(t *testing.T) {
		done := make(chan struct{})
		async.Dispatch(context.Background(), func(ctx context.Context) error {
			close(done)
			return nil
		})

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("handler was not executed")
		}
	})

	t.Run("survives handler error and panic", func(t *testing.T) {
		done := make(chan struct{}, 2)
		async.Dispatch(context.Background(), func(ctx context.Context) error {
			done <- struct{}{}
			return errors.New("failure")
		})
		async.Dispatch(context.Background(), func(ctx context.Context) error {
			done <- struct{}{}
			panic("boom")
		})

		for i := 0; i < 2; i++ {
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("handler was not executed")
			}
		}
		gt.Number(t, len(done)).Equal(0)
	})
}
