package earthengine

import (
	"context"
	"fmt"
	"time"

	"github.com/cavaliercoder/grab"
	"github.com/geofield/satextract/service"
	"github.com/geofield/satextract/service/log"
)

func fmtBytes(bytes int64) string {
	v := float64(bytes)
	switch {
	case v > 1<<30:
		return fmt.Sprintf("%.2fGo", v/(1<<30))
	case v > 1<<20:
		return fmt.Sprintf("%.2fMo", v/(1<<20))
	case v > 1<<10:
		return fmt.Sprintf("%.2fko", v/(1<<10))
	default:
		return fmt.Sprintf("%.2fo", v)
	}
}

func displayProgress(ctx context.Context, prefix string, resp *grab.Response, progressPeriod float64) {
	t := time.NewTicker(time.Second)
	defer t.Stop()

	progress, lastBytes, seconds := 0.0, int64(0), int64(0)
	for {
		select {
		case <-t.C:
			seconds++
			if resp.Progress() > progress {
				log.Logger(ctx).Sugar().Debugf("%s: %.2f%% %s/%s (%s/s)", prefix, 100*resp.Progress(), fmtBytes(resp.BytesComplete()), fmtBytes(resp.Size), fmtBytes((resp.BytesComplete()-lastBytes)/seconds))
				seconds = 0
				progress += progressPeriod
				lastBytes = resp.BytesComplete()
			}

		case <-resp.Done:
			return
		}
	}
}

// download the url into dstFile with display every 5%.
// HTTP 408/429/5xx failures are classified temporary.
func (c *Client) download(ctx context.Context, url, dstFile, displayPrefix string) error {
	req, err := grab.NewRequest(dstFile, url)
	if err != nil {
		return fmt.Errorf("download.NewRequest: %w", err)
	}
	req = req.WithContext(ctx)

	client := grab.NewClient()
	resp := client.Do(req)

	displayProgress(ctx, displayPrefix, resp, 0.05)

	if err := resp.Err(); err != nil {
		err = fmt.Errorf("download[%s]: %w", req.URL(), err)
		if resp.HTTPResponse == nil || service.TemporaryHTTPCode(resp.HTTPResponse.StatusCode) {
			return service.MakeTemporary(err)
		}
		return err
	}
	return nil
}
