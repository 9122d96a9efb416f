// Command forecast-ingest runs the forecast pipeline once and prints the
// result. It exits 0 whatever the outcome.
package main

import (
	"context"
	"fmt"

	"github.com/i474232898/weather-forecast-ingest/internal/app"
)

func main() {
	res := app.RunOnce(context.Background())
	fmt.Println(res.Message)
}
