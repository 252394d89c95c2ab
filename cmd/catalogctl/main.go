package main

import (
	"context"
	"fmt"
	"os"

	"github.com/0finn0the0human0/springbootTraining/internal/cli"
	"github.com/0finn0the0human0/springbootTraining/pkg/cmdutil"
)

func main() {
	ctx, stop := cmdutil.InterruptContext(context.Background())
	defer stop()

	if err := cli.NewRootCmd(cli.OpenFromEnv).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", cli.ErrorMessage(err))
		stop()
		if cli.IsUserError(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
