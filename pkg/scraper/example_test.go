package scraper_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"

	"pixelripper/internal/downloader"
	"pixelripper/pkg/classifier"
	"pixelripper/pkg/fetch"
	"pixelripper/pkg/logger"
	"pixelripper/pkg/scraper"
)

func ExampleSession() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			fmt.Fprint(w, `<img src="/cat.jpg"><a href="/purr.ogg">listen</a><a href="/missing.mp4">watch</a>`)
		case "/cat.jpg", "/purr.ogg":
			fmt.Fprint(w, "data")
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	root, err := os.MkdirTemp("", "pixelripper-example")
	if err != nil {
		fmt.Println(err)
		return
	}
	defer os.RemoveAll(root)

	log := logger.NewNopLogger()
	s := scraper.New(
		fetch.NewHTTPFetcher(server.Client(), nil, log),
		classifier.New(nil, classifier.Options{Logger: log}),
		downloader.New(server.Client(), downloader.Options{Logger: log}),
		log,
	)

	if err := s.Rip(context.Background(), server.URL+"/", nil); err != nil {
		fmt.Println(err)
		return
	}
	report, err := s.DownloadAll(context.Background(), root, nil, [3]string{".jpg", ".mp4", ".mp3"})
	if err != nil {
		fmt.Println(err)
		return
	}

	links := s.Links()
	fmt.Println("images:", len(links.Images), "videos:", len(links.Videos), "audio:", len(links.Audios))
	for category, failures := range report {
		fmt.Println(category, len(failures))
	}
	// Output:
	// images: 1 videos: 1 audio: 1
	// videos 1
}
