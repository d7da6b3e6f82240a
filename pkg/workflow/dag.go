package workflow

// DAG view of a workflow definition, shaped for graph renderers: nodes
// carry precomputed positions, edges point from dependency to dependent.

const (
	dagLevelSpacing = 150 // vertical distance between dependency levels
	dagNodeSpacing  = 250 // horizontal distance between nodes on a level
)

// DAGPosition is a node's canvas coordinate.
type DAGPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DAGNodeData is the renderable payload of a node.
type DAGNodeData struct {
	Label       string `json:"label"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// DAGNode is one stage in the rendered graph.
type DAGNode struct {
	ID       string      `json:"id"`
	Type     string      `json:"type"` // always "stage"
	Data     DAGNodeData `json:"data"`
	Position DAGPosition `json:"position"`
}

// DAGEdge is one dependency arrow, from the dependency to the stage that
// needs it.
type DAGEdge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// DAG is the complete rendered graph of one workflow.
type DAG struct {
	Nodes []DAGNode `json:"nodes"`
	Edges []DAGEdge `json:"edges"`
}

// ToDAG lays out def as a layered graph. A stage's level is the length of
// its longest dependency chain; levels stack downward and each level's
// nodes are centered horizontally, keeping definition order left to right.
func ToDAG(def *Definition) DAG {
	order, err := structureAndOrder(def)
	if err != nil {
		// Registered workflows are always valid; for anything else fall
		// back to definition order and level what resolves.
		order = def.Stages
	}

	// 1. Level each stage by its longest path from a root
	levels := make(map[string]int, len(order))
	for _, stage := range order {
		level := 0
		for _, dep := range stage.Dependencies() {
			if depLevel, ok := levels[dep]; ok && depLevel+1 > level {
				level = depLevel + 1
			}
		}
		levels[stage.ID()] = level
	}

	// 2. Count the nodes per level for horizontal centering
	widths := map[int]int{}
	for _, stage := range def.Stages {
		widths[levels[stage.ID()]]++
	}

	// 3. Emit nodes in definition order with computed positions
	dag := DAG{
		Nodes: make([]DAGNode, 0, len(def.Stages)),
		Edges: []DAGEdge{},
	}
	placed := map[int]int{}
	for _, stage := range def.Stages {
		level := levels[stage.ID()]
		index := placed[level]
		placed[level]++

		width := widths[level]
		x := (float64(index) - float64(width-1)/2) * dagNodeSpacing
		y := float64(level) * dagLevelSpacing

		dag.Nodes = append(dag.Nodes, DAGNode{
			ID:   stage.ID(),
			Type: "stage",
			Data: DAGNodeData{
				Label:       stage.Name(),
				Type:        stage.Type(),
				Description: stage.Description(),
			},
			Position: DAGPosition{X: x, Y: y},
		})
	}

	// 4. One edge per declared dependency
	for _, stage := range def.Stages {
		for _, dep := range stage.Dependencies() {
			dag.Edges = append(dag.Edges, DAGEdge{
				ID:     "e-" + dep + "-" + stage.ID(),
				Source: dep,
				Target: stage.ID(),
			})
		}
	}
	return dag
}
