package jsx

// Action tells Walk what to do after visiting a node.
type Action int

const (
	Continue     Action = iota // descend into children
	SkipChildren               // keep the node, do not descend
	Replace                    // substitute Step.With (nil removes the node)
)

// Step is a visitor's instruction for one node.
type Step struct {
	Action Action
	With   Node
}

// ReplaceWith returns a Step replacing the visited node with n.
func ReplaceWith(n Node) Step { return Step{Action: Replace, With: n} }

// Visitor is called for every node in pre-order.
type Visitor interface {
	Visit(n Node) (Step, error)
}

// VisitorFunc adapts a function to Visitor.
type VisitorFunc func(n Node) (Step, error)

func (f VisitorFunc) Visit(n Node) (Step, error) { return f(n) }

// Walk visits root and its descendants in document order, applying each Step. A
// replacement is not descended into. Walk returns the (possibly replaced) root;
// it is nil when the root itself was removed.
func Walk(root Node, v Visitor) (Node, error) {
	if root == nil {
		return nil, nil
	}
	step, err := v.Visit(root)
	if err != nil {
		return nil, err
	}
	switch step.Action {
	case Replace:
		return step.With, nil
	case SkipChildren:
		return root, nil
	}

	switch n := root.(type) {
	case *Element:
		n.Children, err = walkChildren(n.Children, v)
	case *Ref:
		n.Children, err = walkChildren(n.Children, v)
	}
	if err != nil {
		return nil, err
	}
	return root, nil
}

func walkChildren(children []Node, v Visitor) ([]Node, error) {
	out := children[:0:0]
	for _, c := range children {
		r, err := Walk(c, v)
		if err != nil {
			return nil, err
		}
		if r != nil {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}
