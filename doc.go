// Package beanpod is a runtime dependency-injection container.
//
// Components are registered with explicit dependency metadata: an ordered list
// of named, typed parameters and a constructor receiving the resolved values
// by name. The container builds the object graph on demand:
//
//	c := beanpod.New(beanpod.WithLogger(logger))
//
//	_ = beanpod.Provide[*Database](c, func(beanpod.Args) (*Database, error) {
//	    return OpenDatabase()
//	})
//	_ = beanpod.Provide[*UserRepository](c,
//	    beanpod.Inject[*Database]("db"),
//	    beanpod.WithStereotype(beanpod.StereotypeRepository),
//	    func(args beanpod.Args) (*UserRepository, error) {
//	        return &UserRepository{db: beanpod.MustArg[*Database](args, "db")}, nil
//	    },
//	)
//
//	repo, err := beanpod.Get[*UserRepository](c)
//
// # Scopes
//
// Singletons (the default) are constructed at most once and shared.
// Concurrent first requests for the same singleton agree on one instance while
// unrelated types are constructed in parallel. Prototypes are constructed on
// every request and never retained.
//
// # Capabilities
//
// A request for a type without an exact registration falls back to the
// concrete types declared to satisfy it, with As at registration time or with
// RegisterCapability. A single Primary implementation wins; with no primary
// the first declared wins; several primaries is an error.
//
// # Errors
//
// Container errors are *errs.Error values from github.com/xraph/go-utils/errs,
// matched by code with errors.Is against the sentinels (ErrBeanNotFoundSentinel,
// ErrCircularDependencySentinel, ErrAmbiguousCapabilitySentinel). ErrorCode,
// ErrorType, CycleOf and CandidatesOf read the code and context they carry.
// Errors returned by constructors reach the caller unchanged.
//
// # Validation
//
// ValidateConfiguration walks the registry without constructing anything and
// reports cycles, unresolved dependencies and ambiguous capabilities as data.
// CheckHealth adds the health of published singletons implementing
// di.HealthChecker from github.com/xraph/go-utils/di.
package beanpod
