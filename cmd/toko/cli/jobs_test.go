package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTriggerRejectsUnknownJob(t *testing.T) {
	cli, err := NewJobsCLI("127.0.0.1:6379")
	require.NoError(t, err)
	defer func() { _ = cli.Close() }()

	_, err = cli.Trigger(context.Background(), "report:unknown")
	require.ErrorContains(t, err, "unsupported job")
}

func TestTriggerRequiresClient(t *testing.T) {
	var cli *JobsCLI
	_, err := cli.Trigger(context.Background(), "report:warmup")
	require.Error(t, err)
}
