package b2files_test

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/sagarc03/b2files"
)

func Example() {
	ctx := context.Background()
	httpClient := &http.Client{Timeout: time.Minute}

	auth, err := b2files.Authorize(ctx, httpClient, "http://localhost:5709", os.Getenv("B2_APPLICATION_KEY_ID"), os.Getenv("B2_APPLICATION_KEY"))
	if err != nil {
		log.Fatal(err)
	}

	files, err := b2files.NewFiles(b2files.SessionFromAuthorization(auth), b2files.WithDoer(httpClient))
	if err != nil {
		log.Fatal(err)
	}

	rec, err := files.Upload(ctx, b2files.UploadObject{
		Data:     []byte("hello"),
		FileName: "greetings/hello.txt",
		BucketID: "4a48fe8875c6214145260818",
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(rec.FileID)
}

func ExampleFiles_Pages() {
	session := b2files.NewSessionConfig(b2files.Session{
		APIURL:        "http://localhost:5709",
		AccountToken:  os.Getenv("B2_ACCOUNT_TOKEN"),
		PersistBucket: true,
		BucketID:      "4a48fe8875c6214145260818",
	})

	files, err := b2files.NewFiles(session)
	if err != nil {
		log.Fatal(err)
	}

	for page, err := range files.Pages(context.Background(), b2files.ListQuery{MaxFileCount: 1000}) {
		if err != nil {
			log.Fatal(err)
		}
		for _, f := range page.Files {
			fmt.Println(f.FileName, f.ContentLength)
		}
	}
}
