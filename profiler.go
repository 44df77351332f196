package beanpod

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// WriteReport writes a human-readable report of the container: creation
// statistics per registered type, the dependency graph and the validation
// result. Nothing is constructed. The first write error stops the output and
// is returned.
func (c *Container) WriteReport(w io.Writer) error {
	metrics := c.GetMetrics()
	beans := c.Beans()

	ew := &errWriter{w: w}
	tw := tabwriter.NewWriter(ew, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "BEAN\tSCOPE\tCREATED\tAVG TIME")
	for _, info := range beans {
		record := metrics[info.Type]
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n",
			typeName(info.Type), info.Scope, record.CreationCount, record.AverageConstructionTime())
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(ew)
	fmt.Fprintln(ew, "Dependency graph:")
	for _, info := range beans {
		fmt.Fprintf(ew, "%s\n", typeName(info.Type))
		for _, dep := range info.Dependencies {
			kind := "param"
			if dep.Field {
				kind = "field"
			}
			fmt.Fprintf(ew, "  └─ %s %s: %s\n", kind, dep.Name, typeName(dep.Type))
		}
	}

	fmt.Fprintln(ew)
	issues := c.ValidateConfiguration()
	if len(issues) == 0 {
		fmt.Fprintln(ew, "Validation passed")
		return ew.err
	}

	fmt.Fprintf(ew, "Validation found %d issue(s):\n", len(issues))
	for _, issue := range issues {
		fmt.Fprintf(ew, "  - %s: %s\n", issue.Kind, issue.Error())
	}

	return ew.err
}

// errWriter keeps the first write error and drops every later write.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}

	n, err := ew.w.Write(p)
	if err != nil {
		ew.err = err
	}
	return n, err
}
