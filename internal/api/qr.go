package api

import (
	"net/http"
	"strconv"
	"time"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	qrSize     = 256
	qrCacheCap = 512
	qrCacheTTL = time.Hour
)

// deepLink is the page URL that opens with precinct id selected.
func deepLink(r *http.Request, id int) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("x-forwarded-proto"); p == "http" || p == "https" {
		scheme = p
	}
	return scheme + "://" + r.Host + "/?precinct=" + strconv.Itoa(id)
}

// qrPNG encodes link, reusing a cached image when the same link was encoded recently.
func qrPNG(cache *lru, link string) ([]byte, error) {
	if png, ok := cache.Get(link); ok {
		return png, nil
	}
	png, err := qrcode.Encode(link, qrcode.Medium, qrSize)
	if err != nil {
		return nil, err
	}
	cache.Set(link, png)
	return png, nil
}

func writeQR(w http.ResponseWriter, png []byte) {
	w.Header().Set("content-type", "image/png")
	w.Header().Set("cache-control", "no-store")
	w.Header().Set("content-disposition", `inline; filename="qr.png"`)
	_, _ = w.Write(png)
}
