package beanpod

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type (
	nodeA struct{}
	nodeB struct{}
	nodeC struct{}
	nodeD struct{}
)

var (
	typA = TypeOf[nodeA]()
	typB = TypeOf[nodeB]()
	typC = TypeOf[nodeC]()
	typD = TypeOf[nodeD]()
)

func indexOf(types []reflect.Type, t reflect.Type) int {
	for i, typ := range types {
		if typ == t {
			return i
		}
	}
	return -1
}

func TestDependencyGraph_TopologicalSort_Simple(t *testing.T) {
	g := NewDependencyGraph()
	g.AddNode(typC, []reflect.Type{typB})
	g.AddNode(typB, []reflect.Type{typA})
	g.AddNode(typA, nil)

	result, err := g.TopologicalSort()
	require.NoError(t, err)

	// Dependencies first, whatever the registration order
	assert.Equal(t, []reflect.Type{typA, typB, typC}, result)
}

func TestDependencyGraph_TopologicalSort_Complex(t *testing.T) {
	g := NewDependencyGraph()
	g.AddNode(typA, nil)
	g.AddNode(typB, []reflect.Type{typA})
	g.AddNode(typC, []reflect.Type{typA})
	g.AddNode(typD, []reflect.Type{typB, typC})

	result, err := g.TopologicalSort()
	require.NoError(t, err)

	aIdx := indexOf(result, typA)
	bIdx := indexOf(result, typB)
	cIdx := indexOf(result, typC)
	dIdx := indexOf(result, typD)

	assert.Less(t, aIdx, bIdx)
	assert.Less(t, aIdx, cIdx)
	assert.Less(t, bIdx, dIdx)
	assert.Less(t, cIdx, dIdx)
}

func TestDependencyGraph_TopologicalSort_CircularDependency(t *testing.T) {
	g := NewDependencyGraph()
	g.AddNode(typA, []reflect.Type{typB})
	g.AddNode(typB, []reflect.Type{typA})

	_, err := g.TopologicalSort()
	require.ErrorIs(t, err, ErrCircularDependencySentinel)

	cycle, ok := CycleOf(err)
	require.True(t, ok)
	assert.Equal(t, []reflect.Type{typA, typB, typA}, cycle)
}

func TestDependencyGraph_TopologicalSort_SelfReference(t *testing.T) {
	g := NewDependencyGraph()
	g.AddNode(typA, []reflect.Type{typA})

	_, err := g.TopologicalSort()
	assert.ErrorIs(t, err, ErrCircularDependencySentinel)
}

func TestDependencyGraph_TopologicalSort_MissingDependency(t *testing.T) {
	g := NewDependencyGraph()
	g.AddNode(typA, []reflect.Type{typB})

	// Unregistered dependencies are skipped
	result, err := g.TopologicalSort()
	require.NoError(t, err)
	assert.Equal(t, []reflect.Type{typA}, result)
}

func TestDependencyGraph_TopologicalSort_Empty(t *testing.T) {
	g := NewDependencyGraph()

	result, err := g.TopologicalSort()
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestDependencyGraph_Nodes(t *testing.T) {
	g := NewDependencyGraph()
	g.AddNode(typB, []reflect.Type{typA})
	g.AddNode(typA, nil)
	g.AddNode(typB, []reflect.Type{typC})

	assert.Equal(t, []reflect.Type{typB, typA}, g.Types())
	assert.Equal(t, []reflect.Type{typC}, g.Dependencies(typB))
	assert.True(t, g.HasNode(typA))
	assert.False(t, g.HasNode(typC))
}

func TestDependencyGraph_Cycles(t *testing.T) {
	g := NewDependencyGraph()
	g.AddNode(typA, []reflect.Type{typB})
	g.AddNode(typB, []reflect.Type{typC})
	g.AddNode(typC, []reflect.Type{typA, typD})
	g.AddNode(typD, []reflect.Type{typD})

	cycles := g.Cycles()

	require.Len(t, cycles, 2)
	assert.Equal(t, []reflect.Type{typA, typB, typC, typA}, cycles[0])
	assert.Equal(t, []reflect.Type{typD, typD}, cycles[1])
}

func TestDependencyGraph_Cycles_Acyclic(t *testing.T) {
	g := NewDependencyGraph()
	g.AddNode(typA, nil)
	g.AddNode(typB, []reflect.Type{typA, typC})
	g.AddNode(typD, []reflect.Type{typA, typB})

	assert.Empty(t, g.Cycles())
}

func TestContainer_DependencyGraph(t *testing.T) {
	c := newTestContainer(t)
	registerChain(t, c)

	order, err := c.DependencyGraph().TopologicalSort()
	require.NoError(t, err)

	assert.Equal(t, []reflect.Type{
		TypeOf[*chainE](), TypeOf[*chainD](), TypeOf[*chainC](), TypeOf[*chainB](), TypeOf[*chainA](),
	}, order)
	assert.Empty(t, c.GetMetrics(), "building the graph constructs nothing")
}

func TestContainer_DependencyGraph_FollowsCapabilities(t *testing.T) {
	c := newTestContainer(t)
	provideNotifiers(t, c, TypeOf[*smsNotifier]())

	require.NoError(t, Provide[*testService](c, Inject[Notifier]("n"), func(Args) (*testService, error) {
		return &testService{}, nil
	}))

	g := c.DependencyGraph()
	assert.Equal(t, []reflect.Type{TypeOf[*smsNotifier]()}, g.Dependencies(TypeOf[*testService]()))
}
