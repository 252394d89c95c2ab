package config

type Validation struct {
	// FailFast reports only the first violated rule of a request.
	FailFast bool `env:"VALIDATION_FAIL_FAST" envDefault:"true"`
}
