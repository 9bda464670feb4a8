package backendapi

import "time"

type Config struct {
	BaseURL        string        `env:"BILLING_API_BASE_URL,required"`                // BaseURL is the billing API root, e.g. "https://api.example.com/v1/billing".
	RequestTimeout time.Duration `env:"BILLING_API_REQUEST_TIMEOUT" envDefault:"15s"` // RequestTimeout bounds each individual API call.
	UserAgent      string        `env:"BILLING_API_USER_AGENT" envDefault:"billingkit/1.0"`
}
