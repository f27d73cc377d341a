// Package scraper runs one rip: it fetches a page, scrapes and classifies
// its links, then downloads every image, video and audio file it found.
//
// A Session is used in two steps:
//
//	s := scraper.New(fetcher, cls, dl, log)
//	if err := s.Rip(ctx, "https://gallery.example/album", nil); err != nil {
//	    return err
//	}
//	report, err := s.DownloadAll(ctx, "out", nil, cfg.Download.MissingExtensions())
//
// Files land in out/images, out/videos and out/audio. A subfolder that ends
// up empty is removed. The report lists failed URLs by category and omits
// categories where every download succeeded.
//
// Only a page fetch failure is fatal. A failed file download is recorded in
// the report and the batch continues.
package scraper
