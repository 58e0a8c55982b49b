package http

import (
	"compress/flate"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/net/http2"
)

// newTransport returns a transport that negotiates HTTP/2 when the server
// offers it and stays on HTTP/1.1 otherwise.
func newTransport() *http.Transport {
	t := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	_ = http2.ConfigureTransport(t)
	return t
}

// errBadBody marks a body that fails the same way on every attempt: over
// the size cap or not decodable with its Content-Encoding.
var errBadBody = errors.New("unusable response body")

// wireReader records read errors of the underlying connection so they can
// be told apart from decoding errors.
type wireReader struct {
	r   io.Reader
	err error
}

func (w *wireReader) Read(p []byte) (int, error) {
	n, err := w.r.Read(p)
	if err != nil && err != io.EOF {
		w.err = err
	}
	return n, err
}

// readBody decodes the response according to Content-Encoding and caps it
// at limit bytes. Oversized and undecodable bodies wrap errBadBody; failed
// reads from the connection do not.
func readBody(resp *http.Response, limit int64) ([]byte, error) {
	wire := &wireReader{r: resp.Body}
	var r io.Reader = wire
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(wire)
		if err != nil {
			return nil, decodeError("gzip reader", err, wire)
		}
		defer gz.Close()
		r = gz
	case "br":
		r = brotli.NewReader(wire)
	case "deflate":
		fl := flate.NewReader(wire)
		defer fl.Close()
		r = fl
	}

	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, decodeError("read body", err, wire)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", errBadBody, limit)
	}
	return body, nil
}

func decodeError(op string, err error, wire *wireReader) error {
	if wire.err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %v", errBadBody, op, err)
}
