package appcontext

// Env is the kind of process the application graph is assembled for.
type Env int

const (
	// EnvServer runs the HTTP API and, when enabled, the rebuild worker.
	EnvServer Env = iota
	// EnvCLI runs a single operator command against the infrastructure.
	EnvCLI
)

func (e Env) String() string {
	switch e {
	case EnvServer:
		return "server"
	case EnvCLI:
		return "cli"
	default:
		return "unknown"
	}
}

type Ctx struct {
	Env Env
}

func Declare(env Env) Ctx {
	return Ctx{Env: env}
}
