// Package gateway: edge tipis yang cuma nerusin request client ke dua
// service. Tidak ada logika saga di sini.
package gateway

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
)

type Proxy struct {
	orders   *httputil.ReverseProxy
	payments *httputil.ReverseProxy
}

func New(ordersURL, paymentsURL string) (*Proxy, error) {
	ou, err := url.Parse(ordersURL)
	if err != nil {
		return nil, err
	}
	pu, err := url.Parse(paymentsURL)
	if err != nil {
		return nil, err
	}
	return &Proxy{
		orders:   httputil.NewSingleHostReverseProxy(ou),
		payments: httputil.NewSingleHostReverseProxy(pu),
	}, nil
}

func (p *Proxy) Register(r *chi.Mux) {
	// /api/v1/orders* -> orders service, path apa adanya
	r.Handle("/api/v1/orders", p.orders)
	r.Handle("/api/v1/orders/*", p.orders)

	// /api/v1/accounts* -> payments service di /api/v1/payments/accounts*
	rewrite := func(w http.ResponseWriter, req *http.Request) {
		req.URL.Path = strings.Replace(req.URL.Path, "/api/v1/accounts", "/api/v1/payments/accounts", 1)
		p.payments.ServeHTTP(w, req)
	}
	r.HandleFunc("/api/v1/accounts/*", rewrite)
}
