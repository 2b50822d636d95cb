package config

import (
	"net/http"
	"net/url"
	"time"

	"gitlab.com/distributed_lab/figure/v3"
	"gitlab.com/distributed_lab/kit/kv"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

type Metadata struct {
	Gateway *url.URL
	Client  *http.Client
}

func (c *config) Metadata() Metadata {
	return c.metadataOnce.Do(func() interface{} {
		var cfg struct {
			Gateway        *url.URL      `fig:"gateway,required"`
			RequestTimeout time.Duration `fig:"request_timeout"`
		}
		err := figure.Out(&cfg).
			From(kv.MustGetStringMap(c.getter, "metadata")).
			Please()
		if err != nil {
			panic(errors.Wrap(err, "failed to figure out metadata"))
		}

		if cfg.RequestTimeout == 0 {
			cfg.RequestTimeout = defaultRequestTimeout
		}

		return Metadata{
			Gateway: cfg.Gateway,
			Client:  &http.Client{Timeout: cfg.RequestTimeout},
		}
	}).(Metadata)
}
