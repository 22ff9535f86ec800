package model

import "fmt"

// NodeKind tags a graph node with the label family it came from.
type NodeKind int

const (
	KindUnknown NodeKind = iota
	KindUser
	KindState
	KindActivity
)

func (k NodeKind) String() string {
	switch k {
	case KindUser:
		return "User"
	case KindState:
		return "State"
	case KindActivity:
		return "Activity"
	default:
		return "Unknown"
	}
}

// ParseNodeKind is the inverse of String. Anything unrecognized is KindUnknown.
func ParseNodeKind(s string) NodeKind {
	switch s {
	case "User":
		return KindUser
	case "State":
		return KindState
	case "Activity":
		return KindActivity
	default:
		return KindUnknown
	}
}

// KindFromLabels picks the first recognized label.
func KindFromLabels(labels []string) NodeKind {
	for _, l := range labels {
		if k := ParseNodeKind(l); k != KindUnknown {
			return k
		}
	}
	return KindUnknown
}

// NodeRef identifies a node in the shared embedding space. Two nodes of
// different kinds may share an ID without colliding.
type NodeRef struct {
	Kind NodeKind
	ID   string
}

func UserRef(id string) NodeRef     { return NodeRef{Kind: KindUser, ID: id} }
func StateRef(name string) NodeRef  { return NodeRef{Kind: KindState, ID: name} }
func ActivityRef(id string) NodeRef { return NodeRef{Kind: KindActivity, ID: id} }

func (r NodeRef) String() string {
	return fmt.Sprintf("%s:%s", r.Kind, r.ID)
}
