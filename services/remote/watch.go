package remotesvc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/sethvargo/go-retry"

	"github.com/trezcool/campuscopilot/core"
)

// SnapshotEvent is the server-sent event carrying a collection snapshot.
const SnapshotEvent = "snapshot"

const maxEventSize = 16 << 20

var errStreamClosed = errors.New("stream closed by server")

// Watch opens a server-sent event stream of collection snapshots. A dropped stream is
// reopened with exponential backoff until ctx is done; the first snapshot after a reconnect
// is the full current collection.
func (c *Client) Watch(ctx context.Context, collection string) (<-chan []core.Document, error) {
	const op = "remote.Watch"
	resp, err := c.openStream(ctx, op, collection)
	if err != nil {
		return nil, err
	}
	out := make(chan []core.Document, 1)
	go c.watch(ctx, op, collection, resp, out)
	return out, nil
}

func (c *Client) openStream(ctx context.Context, op, collection string) (*http.Response, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.url("collections", collection, "watch"), nil)
	if err != nil {
		return nil, core.E(core.KindInternal, op, err)
	}
	req.Header.Set("Accept", "text/event-stream")
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, core.E(core.KindNetwork, op, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		defer func() { _ = resp.Body.Close() }()
		return nil, responseErr(op, resp)
	}
	return resp, nil
}

func (c *Client) watch(ctx context.Context, op, collection string, resp *http.Response, out chan []core.Document) {
	defer close(out)
	for {
		err := c.readSnapshots(resp.Body, collection, func(docs []core.Document) { send(out, docs) })
		_ = resp.Body.Close()
		if ctx.Err() != nil {
			return
		}
		c.logger.Warn(fmt.Sprintf("watch stream of %s interrupted", collection), err)

		backoff := retry.WithCappedDuration(c.retryMax, retry.NewExponential(c.retryBase))
		err = retry.Do(ctx, backoff, func(ctx context.Context) error {
			r, err := c.openStream(ctx, op, collection)
			if err != nil {
				if core.IsKind(err, core.KindNetwork) || core.IsKind(err, core.KindInternal) {
					return retry.RetryableError(err)
				}
				return err
			}
			resp = r
			return nil
		})
		if err != nil {
			if ctx.Err() == nil {
				c.logger.Error(fmt.Sprintf("watch of %s stopped", collection), err)
			}
			return
		}
		c.logger.Info(fmt.Sprintf("watch stream of %s reconnected", collection))
	}
}

// send replaces a snapshot the receiver has not taken yet.
func send(out chan []core.Document, docs []core.Document) {
	for {
		select {
		case out <- docs:
			return
		default:
		}
		select {
		case <-out:
		default:
		}
	}
}

// readSnapshots parses the event stream until it ends.
func (c *Client) readSnapshots(body io.Reader, collection string, onSnapshot func([]core.Document)) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventSize)

	var (
		event string
		data  strings.Builder
	)
	dispatch := func() {
		defer func() {
			event = ""
			data.Reset()
		}()
		if event != SnapshotEvent || data.Len() == 0 {
			return
		}
		docs := make([]core.Document, 0)
		if err := json.Unmarshal([]byte(data.String()), &docs); err != nil {
			c.logger.Error(fmt.Sprintf("decoding %s snapshot", collection), err)
			return
		}
		onSnapshot(docs)
	}

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			dispatch()
		case strings.HasPrefix(line, ":"): // comment / keep-alive
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "reading event stream")
	}
	return errStreamClosed
}
