package rap

import "strings"

// Names used by model configs to declare skeletons.
const (
	SkeletonsClass  = "CfgSkeletons"
	SkeletonBones   = "skeletonBones"
	SkeletonInherit = "skeletonInherit"
)

// Bone is one entry of a skeleton: a bone name and the name of its parent
// bone, which is empty for root bones.
type Bone struct {
	Name   string `json:"name"   yaml:"name"`
	Parent string `json:"parent" yaml:"parent"`
}

// Lower returns b with both names lower-cased.
func (b Bone) Lower() Bone {
	return Bone{Name: strings.ToLower(b.Name), Parent: strings.ToLower(b.Parent)}
}

// BoneConflict records a bone that was dropped during compilation because a
// bone with the same name but a different parent was already kept.
type BoneConflict struct {
	Kept    Bone `json:"kept"    yaml:"kept"`
	Dropped Bone `json:"dropped" yaml:"dropped"`
}

// Skeleton is the compiled bone set of a skeleton class.
type Skeleton struct {
	Name      string         `json:"name"                yaml:"name"`
	Bones     []Bone         `json:"bones"               yaml:"bones"`
	Conflicts []BoneConflict `json:"conflicts,omitempty" yaml:"conflicts,omitempty"`
}

// Skeletons returns the skeleton classes declared in the root CfgSkeletons
// class, in declaration order. Forward declarations are skipped.
func (t *Tree) Skeletons() []*Class {
	cfg, ok := t.Class(SkeletonsClass)
	if !ok {
		return nil
	}

	return cfg.Body.Classes()
}

// CompileBones returns the compiled bones of the named skeleton. See
// [Tree.CompileSkeleton].
func (t *Tree) CompileBones(skeleton string) []Bone {
	return t.CompileSkeleton(skeleton).Bones
}

// CompileSkeleton compiles the bone list of the named skeleton in CfgSkeletons.
//
// The skeleton's own bones come from its skeletonBones array. When it declares
// none and has a direct parent class, the parent's own bones are used instead;
// this substitution is a single level. The skeletonInherit property, resolved
// through class inheritance, names a second skeleton whose compiled bones are
// appended.
//
// Bones are deduplicated by case-insensitive name. The first occurrence wins,
// own bones before inherited ones, and a dropped bone whose parent differs from
// the kept one is reported as a conflict.
func (t *Tree) CompileSkeleton(skeleton string) Skeleton {
	out := Skeleton{Name: skeleton}

	cfg, ok := t.Class(SkeletonsClass)
	if !ok {
		return out
	}

	bones := compileBones(cfg.Body, skeleton, make(map[string]struct{}))

	seen := make(map[string]int, len(bones))

	for _, b := range bones {
		key := strings.ToLower(b.Name)

		if i, ok := seen[key]; ok {
			kept := out.Bones[i]
			if !strings.EqualFold(kept.Parent, b.Parent) {
				out.Conflicts = append(out.Conflicts, BoneConflict{Kept: kept, Dropped: b})
			}

			continue
		}

		seen[key] = len(out.Bones)
		out.Bones = append(out.Bones, b)
	}

	return out
}

// compileBones returns the undeduplicated bone list of skeleton within scope.
// visited guards the skeletonInherit chain.
func compileBones(scope *Body, skeleton string, visited map[string]struct{}) []Bone {
	key := strings.ToLower(skeleton)
	if _, ok := visited[key]; ok {
		return nil
	}

	visited[key] = struct{}{}

	c, ok := scope.Class(skeleton)
	if !ok || c.Body == nil {
		return nil
	}

	bones := ownBones(c.Body)

	if _, declared := c.Body.Find(SkeletonBones); !declared && c.Body.Inherits != "" {
		if parent, ok := scope.Class(c.Body.Inherits); ok {
			bones = ownBones(parent.Body)
		}
	}

	if inherit, ok := scope.ResolveString(skeleton, SkeletonInherit); ok && inherit != "" {
		bones = append(bones, compileBones(scope, inherit, visited)...)
	}

	return bones
}

// ownBones reads the skeletonBones array of body as (name, parent) pairs.
// A trailing unpaired element is ignored.
func ownBones(body *Body) []Bone {
	e, ok := body.Find(SkeletonBones)
	if !ok {
		return nil
	}

	elems, ok := Elements(e)
	if !ok {
		return nil
	}

	bones := make([]Bone, 0, len(elems)/2)

	for i := 0; i+1 < len(elems); i += 2 {
		bones = append(bones, Bone{
			Name:   elems[i].String(),
			Parent: elems[i+1].String(),
		})
	}

	return bones
}
