package safe_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/utils/safe"
)

type trackingBody struct {
	io.Reader
	closed bool
	err    error
}

func (b *trackingBody) Close() error {
	b.closed = true
	return b.err
}

func TestCloseBody(t *testing.T) {
	body := &trackingBody{Reader: strings.NewReader("leftover")}
	safe.CloseBody(context.Background(), body)
	gt.Bool(t, body.closed).True()

	n, _ := body.Read(make([]byte, 8))
	gt.Value(t, n).Equal(0)

	safe.CloseBody(context.Background(), nil)
}

func TestCloseLogsError(t *testing.T) {
	body := &trackingBody{Reader: strings.NewReader(""), err: errors.New("close failed")}
	safe.Close(context.Background(), body)
	gt.Bool(t, body.closed).True()
	safe.Close(context.Background(), nil)
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	safe.Write(context.Background(), &buf, []byte("hello"))
	gt.Value(t, buf.String()).Equal("hello")
	safe.Write(context.Background(), nil, []byte("ignored"))
}
