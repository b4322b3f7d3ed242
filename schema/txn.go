package schema

import (
	"fmt"
	"regexp"

	"xdao.co/concept/cidutil"
	"xdao.co/concept/valuekind"
)

// Txn is a snapshot transaction. It is not safe for concurrent use.
type Txn struct {
	store *Store
	base  uint64
	st    *state
	write bool
	dirty bool
	done  bool
}

func (t *Txn) Writable() bool { return t.write }

// Commit publishes the transaction's writes and ends it. Committing a read
// transaction, or one that wrote nothing, only ends it.
func (t *Txn) Commit() error {
	if t.done {
		return ErrClosed
	}
	t.done = true
	if !t.write || !t.dirty {
		return nil
	}
	return t.store.publish(t)
}

// Close discards the transaction.
func (t *Txn) Close() { t.done = true }

func (t *Txn) reading() error {
	if t.done {
		return ErrClosed
	}
	return nil
}

func (t *Txn) mutating() error {
	if t.done {
		return ErrClosed
	}
	if !t.write {
		return ErrReadOnly
	}
	t.dirty = true
	return nil
}

// Type returns the type labelled label.
func (t *Txn) Type(label string) (Type, bool, error) {
	if err := t.reading(); err != nil {
		return Type{}, false, err
	}
	typ, ok := t.st.types.Load(label)
	return typ, ok, nil
}

// DefineAttributeType creates an attribute type under the root, or returns the
// existing one when label is already defined with the same kind.
func (t *Txn) DefineAttributeType(label string, kind valuekind.Kind) (Type, error) {
	if err := t.mutating(); err != nil {
		return Type{}, err
	}
	if label == "" {
		return Type{}, fmt.Errorf("%w: empty label", ErrInvalid)
	}
	if !kind.IsWritable() {
		return Type{}, fmt.Errorf("%w: value kind %s cannot hold values", ErrInvalid, kind)
	}
	if existing, ok := t.st.types.Load(label); ok {
		if existing.Entity {
			return Type{}, fmt.Errorf("%w: %q is an entity type", ErrInvalid, label)
		}
		if existing.Kind != kind {
			return Type{}, fmt.Errorf("%w: %q is already defined as %s", ErrKindMismatch, label, existing.Kind)
		}
		return existing, nil
	}
	typ := Type{Label: label, Kind: kind, Super: RootAttribute}
	t.st.types.Store(label, typ)
	return typ, nil
}

// DefineEntityType creates an entity type under the root, or returns the
// existing one.
func (t *Txn) DefineEntityType(label string) (Type, error) {
	if err := t.mutating(); err != nil {
		return Type{}, err
	}
	if label == "" {
		return Type{}, fmt.Errorf("%w: empty label", ErrInvalid)
	}
	if existing, ok := t.st.types.Load(label); ok {
		if !existing.Entity {
			return Type{}, fmt.Errorf("%w: %q is an attribute type", ErrInvalid, label)
		}
		return existing, nil
	}
	typ := Type{Label: label, Kind: valuekind.Untyped, Entity: true, Super: RootEntity}
	t.st.types.Store(label, typ)
	return typ, nil
}

func (t *Txn) attributeType(label string) (Type, error) {
	typ, ok := t.st.types.Load(label)
	if !ok {
		return Type{}, fmt.Errorf("%w: %q", ErrNotFound, label)
	}
	if typ.Entity {
		return Type{}, fmt.Errorf("%w: %q is not an attribute type", ErrInvalid, label)
	}
	return typ, nil
}

// SetSupertype makes super the direct supertype of label. Both must be
// attribute types of the same value kind and the result must stay acyclic.
func (t *Txn) SetSupertype(label, super string) error {
	if err := t.mutating(); err != nil {
		return err
	}
	typ, err := t.attributeType(label)
	if err != nil {
		return err
	}
	sup, err := t.attributeType(super)
	if err != nil {
		return err
	}
	if label == RootAttribute {
		return fmt.Errorf("%w: the root attribute type has no supertype", ErrInvalid)
	}
	if typ.Kind != sup.Kind {
		return fmt.Errorf("%w: %q is %s, supertype %q is %s", ErrKindMismatch, label, typ.Kind, super, sup.Kind)
	}
	for cur := super; cur != ""; {
		if cur == label {
			return fmt.Errorf("%w: %q cannot be a subtype of itself", ErrInvalid, label)
		}
		next, _ := t.st.types.Load(cur)
		cur = next.Super
	}
	typ.Super = super
	t.st.types.Store(label, typ)
	return nil
}

// Supertype returns the direct supertype of label, absent for the roots.
func (t *Txn) Supertype(label string) (Type, bool, error) {
	if err := t.reading(); err != nil {
		return Type{}, false, err
	}
	typ, ok := t.st.types.Load(label)
	if !ok {
		return Type{}, false, fmt.Errorf("%w: %q", ErrNotFound, label)
	}
	if typ.Super == "" {
		return Type{}, false, nil
	}
	sup, ok := t.st.types.Load(typ.Super)
	return sup, ok, nil
}

// Subtypes returns label and all of its transitive subtypes, ordered by label.
func (t *Txn) Subtypes(label string) ([]Type, error) {
	if err := t.reading(); err != nil {
		return nil, err
	}
	if _, ok := t.st.types.Load(label); !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, label)
	}
	var out []Type
	t.st.types.Range(func(_ string, typ Type) bool {
		if t.descends(typ.Label, label) {
			out = append(out, typ)
		}
		return true
	})
	return out, nil
}

func (t *Txn) descends(label, ancestor string) bool {
	for cur := label; cur != ""; {
		if cur == ancestor {
			return true
		}
		typ, ok := t.st.types.Load(cur)
		if !ok {
			return false
		}
		cur = typ.Super
	}
	return false
}

func (t *Txn) checkValue(typ Type, v valuekind.Value) error {
	if !typ.Kind.IsWritable() {
		return fmt.Errorf("%w: %q cannot hold values", ErrInvalid, typ.Label)
	}
	if v.Kind() != typ.Kind {
		return fmt.Errorf("%w: %q holds %s, got %s", ErrKindMismatch, typ.Label, typ.Kind, v.Kind())
	}
	return nil
}

// Put returns the instance of label equal to v, creating it if absent.
func (t *Txn) Put(label string, v valuekind.Value) (Instance, error) {
	if err := t.mutating(); err != nil {
		return Instance{}, err
	}
	typ, err := t.attributeType(label)
	if err != nil {
		return Instance{}, err
	}
	if err := t.checkValue(typ, v); err != nil {
		return Instance{}, err
	}
	if typ.Regex != "" {
		re, err := compileRegex(typ.Regex)
		if err != nil {
			return Instance{}, err
		}
		if !re.MatchString(v.Str()) {
			return Instance{}, fmt.Errorf("%w: %q does not match %q", ErrRegexViolation, v.Str(), typ.Regex)
		}
	}
	id, err := cidutil.AttributeIID(label, v)
	if err != nil {
		return Instance{}, err
	}
	inst, _ := t.st.instances.LoadOrStore(id.String(), Instance{IID: id.String(), Type: label, Value: v})
	return inst, nil
}

// Get returns the instance of label equal to v, if any.
func (t *Txn) Get(label string, v valuekind.Value) (Instance, bool, error) {
	if err := t.reading(); err != nil {
		return Instance{}, false, err
	}
	typ, err := t.attributeType(label)
	if err != nil {
		return Instance{}, false, err
	}
	if err := t.checkValue(typ, v); err != nil {
		return Instance{}, false, err
	}
	id, err := cidutil.AttributeIID(label, v)
	if err != nil {
		return Instance{}, false, err
	}
	inst, ok := t.st.instances.Load(id.String())
	return inst, ok, nil
}

// Instances returns the instances of label and of its subtypes, ordered by IID.
func (t *Txn) Instances(label string) ([]Instance, error) {
	if err := t.reading(); err != nil {
		return nil, err
	}
	if _, err := t.attributeType(label); err != nil {
		return nil, err
	}
	var out []Instance
	t.st.instances.Range(func(_ string, inst Instance) bool {
		if t.descends(inst.Type, label) {
			out = append(out, inst)
		}
		return true
	})
	return out, nil
}

// Regex returns the regex constraint of a string attribute type.
func (t *Txn) Regex(label string) (string, error) {
	if err := t.reading(); err != nil {
		return "", err
	}
	typ, err := t.attributeType(label)
	if err != nil {
		return "", err
	}
	if typ.Kind != valuekind.String {
		return "", fmt.Errorf("%w: %q holds %s, regex requires string", ErrKindMismatch, label, typ.Kind)
	}
	return typ.Regex, nil
}

// SetRegex sets (or, with an empty pattern, clears) the regex constraint of a
// string attribute type. Existing instances must already match.
func (t *Txn) SetRegex(label, pattern string) error {
	if err := t.mutating(); err != nil {
		return err
	}
	typ, err := t.attributeType(label)
	if err != nil {
		return err
	}
	if typ.Kind != valuekind.String {
		return fmt.Errorf("%w: %q holds %s, regex requires string", ErrKindMismatch, label, typ.Kind)
	}
	if pattern != "" {
		re, err := compileRegex(pattern)
		if err != nil {
			return err
		}
		var violation error
		t.st.instances.Range(func(_ string, inst Instance) bool {
			if inst.Type == label && !re.MatchString(inst.Value.Str()) {
				violation = fmt.Errorf("%w: existing %q does not match %q", ErrRegexViolation, inst.Value.Str(), pattern)
				return false
			}
			return true
		})
		if violation != nil {
			return violation
		}
	}
	typ.Regex = pattern
	t.st.types.Store(label, typ)
	return nil
}

func compileRegex(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, fmt.Errorf("%w: regex %q: %v", ErrInvalid, pattern, err)
	}
	return re, nil
}

// SetOwns declares that entity type owner owns attribute type attribute,
// optionally as a key.
func (t *Txn) SetOwns(owner, attribute string, key bool) error {
	if err := t.mutating(); err != nil {
		return err
	}
	ot, ok := t.st.types.Load(owner)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, owner)
	}
	if !ot.Entity {
		return fmt.Errorf("%w: owner %q is not an entity type", ErrInvalid, owner)
	}
	at, err := t.attributeType(attribute)
	if err != nil {
		return err
	}
	if !at.Kind.IsWritable() {
		return fmt.Errorf("%w: %q cannot be owned", ErrInvalid, attribute)
	}
	if key && !at.Kind.IsKeyable() {
		return fmt.Errorf("%w: %q holds %s, which cannot be a key", ErrKindMismatch, attribute, at.Kind)
	}
	t.st.owns.Store(ownsKey(owner, attribute), key)
	return nil
}

// Owners returns the types owning attribute, only key owners when onlyKey.
func (t *Txn) Owners(attribute string, onlyKey bool) ([]Type, error) {
	if err := t.reading(); err != nil {
		return nil, err
	}
	if _, err := t.attributeType(attribute); err != nil {
		return nil, err
	}
	var out []Type
	t.st.owns.Range(func(k string, key bool) bool {
		owner, attr := splitOwnsKey(k)
		if attr != attribute || (onlyKey && !key) {
			return true
		}
		if typ, ok := t.st.types.Load(owner); ok {
			out = append(out, typ)
		}
		return true
	})
	return out, nil
}
