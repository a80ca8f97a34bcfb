package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { InitLogging("") })

	ctx := WithContext(context.Background())
	InfoLog(ctx, "exported %d rows", 3)
	assert.Contains(t, buf.String(), `"level":"info"`)
	assert.Contains(t, buf.String(), `"message":"exported 3 rows"`)

	buf.Reset()
	zerolog.Ctx(ctx).Warn().Msg("through ctx")
	assert.Contains(t, buf.String(), "through ctx")

	buf.Reset()
	ErrorLog(context.TODO(), "boom")
	assert.Contains(t, buf.String(), `"level":"error"`)
}

func TestWithContextKeepsExisting(t *testing.T) {
	var buf bytes.Buffer
	own := zerolog.New(&buf)
	ctx := own.WithContext(context.Background())

	assert.Equal(t, ctx, WithContext(ctx))
	InfoLog(ctx, "mine")
	assert.Contains(t, buf.String(), "mine")
}
