package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/viewtube/viewtube/internal/admin"
)

func main() {

	serverURL := flag.String("s", "http://localhost:8080", "base URL of the ViewTube server")
	flag.Parse()

	ctx := context.Background()
	app, err := admin.NewApp(*serverURL, os.Stdin, os.Stdout)

	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)

}
