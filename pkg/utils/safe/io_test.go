package safe_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/lumi/pkg/utils/safe"
)

type failingCloser struct{ called bool }

func (c *failingCloser) Close() error {
	c.called = true
	return errors.New("boom")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("boom") }

func TestClose(t *testing.T) {
	ctx := context.Background()
	safe.Close(ctx, nil)

	c := &failingCloser{}
	safe.Close(ctx, c)
	gt.Bool(t, c.called).True()
}

func TestWrite(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	safe.Write(ctx, &buf, []byte("hello"))
	gt.Value(t, buf.String()).Equal("hello")

	safe.Write(ctx, nil, []byte("ignored"))
	safe.Write(ctx, failingWriter{}, []byte("ignored"))
}
