package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"xdao.co/concept/concept"
	"xdao.co/concept/model"
	"xdao.co/concept/session"
	"xdao.co/concept/valuekind"
)

func (c *cli) defineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "define <label> <kind>",
		Short: "Define an attribute type (kind: boolean|long|double|string|datetime)",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := valuekind.ParseKind(args[1])
			if err != nil {
				return usageError{err}
			}
			return c.withTx(cmd.Context(), session.Write, func(tx *session.Tx) (any, error) {
				a, err := concept.PutAttributeType(cmd.Context(), tx, args[0], kind)
				if err != nil {
					return nil, err
				}
				return model.FromAttributeType(a.Local()), nil
			})
		},
	}
}

func (c *cli) defineEntityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "define-entity <label>",
		Short: "Define an entity type",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withTx(cmd.Context(), session.Write, func(tx *session.Tx) (any, error) {
				t, err := concept.PutEntityType(cmd.Context(), tx, args[0])
				if err != nil {
					return nil, err
				}
				return model.FromThingType(t.ThingType), nil
			})
		},
	}
}

func (c *cli) typeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "type <label>",
		Short: "Look up an attribute type",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withTx(cmd.Context(), session.Read, func(tx *session.Tx) (any, error) {
				a, ok, err := concept.GetAttributeType(cmd.Context(), tx, args[0])
				if err != nil {
					return nil, err
				}
				if !ok {
					return model.Absent[model.AttributeType](), nil
				}
				return model.Found(model.FromAttributeType(a.Local())), nil
			})
		},
	}
}

// lookup resolves label to a remote attribute type or fails with NOT_FOUND.
func lookup(ctx context.Context, tx concept.Transaction, label string) (*concept.RemoteAttributeType, error) {
	a, ok, err := concept.GetAttributeType(ctx, tx, label)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.NewError(model.ErrNotFound, fmt.Sprintf("no attribute type %q", label))
	}
	return a, nil
}

func (c *cli) putCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "put <label> <value>",
		Short: "Put an attribute instance, returning the existing one if equal",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withTx(ctx, session.Write, func(tx *session.Tx) (any, error) {
				a, err := lookup(ctx, tx, args[0])
				if err != nil {
					return nil, err
				}
				v, err := valuekind.ParseValue(a.ValueKind(), args[1])
				if err != nil {
					return nil, err
				}
				return putValue(ctx, a, v)
			})
		},
	}
}

func (c *cli) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <label> <value>",
		Short: "Look up an attribute instance by value",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withTx(ctx, session.Read, func(tx *session.Tx) (any, error) {
				a, err := lookup(ctx, tx, args[0])
				if err != nil {
					return nil, err
				}
				v, err := valuekind.ParseValue(a.ValueKind(), args[1])
				if err != nil {
					return nil, err
				}
				return getValue(ctx, a, v)
			})
		},
	}
}

func (c *cli) instancesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "instances <label>",
		Short: "List instances of a type and its subtypes",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withTx(ctx, session.Read, func(tx *session.Tx) (any, error) {
				a, err := lookup(ctx, tx, args[0])
				if err != nil {
					return nil, err
				}
				it, err := a.GetInstances(ctx)
				if err != nil {
					return nil, err
				}
				insts, err := concept.Collect(it)
				if err != nil {
					return nil, err
				}
				out := make([]model.Attribute, 0, len(insts))
				for _, inst := range insts {
					m, err := model.FromAttribute(inst)
					if err != nil {
						return nil, err
					}
					out = append(out, m)
				}
				return out, nil
			})
		},
	}
}

func (c *cli) subtypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "subtypes <label>",
		Short: "List a type and its transitive subtypes",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withTx(ctx, session.Read, func(tx *session.Tx) (any, error) {
				a, err := lookup(ctx, tx, args[0])
				if err != nil {
					return nil, err
				}
				it, err := a.GetSubtypes(ctx)
				if err != nil {
					return nil, err
				}
				subs, err := concept.Collect(it)
				if err != nil {
					return nil, err
				}
				out := make([]model.AttributeType, 0, len(subs))
				for _, s := range subs {
					out = append(out, model.FromAttributeType(s))
				}
				return out, nil
			})
		},
	}
}

func (c *cli) supertypeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "supertype <label>",
		Short: "Show the direct supertype",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withTx(ctx, session.Read, func(tx *session.Tx) (any, error) {
				a, err := lookup(ctx, tx, args[0])
				if err != nil {
					return nil, err
				}
				sup, ok, err := a.GetSupertype(ctx)
				if err != nil {
					return nil, err
				}
				if !ok {
					return model.Absent[model.AttributeType](), nil
				}
				return model.Found(model.FromAttributeType(sup)), nil
			})
		},
	}
}

func (c *cli) setSupertypeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-supertype <label> <supertype>",
		Short: "Set the direct supertype (both must hold the same value kind)",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withTx(ctx, session.Write, func(tx *session.Tx) (any, error) {
				a, err := lookup(ctx, tx, args[0])
				if err != nil {
					return nil, err
				}
				sup, err := lookup(ctx, tx, args[1])
				if err != nil {
					return nil, err
				}
				if err := a.SetSupertype(ctx, sup.Local()); err != nil {
					return nil, err
				}
				return model.FromAttributeType(a.Local()), nil
			})
		},
	}
}

func (c *cli) ownersCmd() *cobra.Command {
	var onlyKey bool
	cmd := &cobra.Command{
		Use:   "owners <label>",
		Short: "List the entity types owning an attribute type",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withTx(ctx, session.Read, func(tx *session.Tx) (any, error) {
				a, err := lookup(ctx, tx, args[0])
				if err != nil {
					return nil, err
				}
				it, err := a.GetOwners(ctx, onlyKey)
				if err != nil {
					return nil, err
				}
				owners, err := concept.Collect(it)
				if err != nil {
					return nil, err
				}
				out := make([]model.ThingType, 0, len(owners))
				for _, o := range owners {
					out = append(out, model.FromThingType(o))
				}
				return out, nil
			})
		},
	}
	cmd.Flags().BoolVar(&onlyKey, "key", false, "only owners using it as a key")
	return cmd
}

func (c *cli) ownsCmd() *cobra.Command {
	var isKey bool
	cmd := &cobra.Command{
		Use:   "owns <entity> <attribute>",
		Short: "Declare that an entity type owns an attribute type",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withTx(ctx, session.Write, func(tx *session.Tx) (any, error) {
				owner, ok, err := concept.GetThingType(ctx, tx, args[0])
				if err != nil {
					return nil, err
				}
				if !ok {
					return nil, model.NewError(model.ErrNotFound, fmt.Sprintf("no entity type %q", args[0]))
				}
				a, err := lookup(ctx, tx, args[1])
				if err != nil {
					return nil, err
				}
				if err := owner.SetOwns(ctx, a.Local(), isKey); err != nil {
					return nil, err
				}
				return model.FromThingType(owner.ThingType), nil
			})
		},
	}
	cmd.Flags().BoolVar(&isKey, "key", false, "own it as a key (long or string only)")
	return cmd
}

func (c *cli) regexCmd() *cobra.Command {
	var unset bool
	cmd := &cobra.Command{
		Use:   "regex <label> [pattern]",
		Short: "Show, set or (with --unset) clear the regex of a string attribute type",
		Args:  rangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			write := unset || len(args) == 2
			if unset && len(args) == 2 {
				return usageError{fmt.Errorf("--unset takes no pattern")}
			}
			typ := session.Read
			if write {
				typ = session.Write
			}
			return c.withTx(ctx, typ, func(tx *session.Tx) (any, error) {
				a, err := lookup(ctx, tx, args[0])
				if err != nil {
					return nil, err
				}
				s, err := a.AsString()
				if err != nil {
					return nil, err
				}
				if write {
					pattern := ""
					if len(args) == 2 {
						pattern = args[1]
					}
					if err := s.SetRegex(ctx, pattern); err != nil {
						return nil, err
					}
				}
				pattern, ok, err := s.GetRegex(ctx)
				if err != nil {
					return nil, err
				}
				return model.Regex{Label: s.Label(), Pattern: pattern, Set: ok}, nil
			})
		},
	}
	cmd.Flags().BoolVar(&unset, "unset", false, "clear the regex")
	return cmd
}

func putValue(ctx context.Context, a *concept.RemoteAttributeType, v valuekind.Value) (model.Attribute, error) {
	switch a.ValueKind() {
	case valuekind.Boolean:
		return putTyped[bool](ctx, a, v)
	case valuekind.Long:
		return putTyped[int64](ctx, a, v)
	case valuekind.Double:
		return putTyped[float64](ctx, a, v)
	case valuekind.String:
		return putTyped[string](ctx, a, v)
	case valuekind.DateTime:
		return putTyped[valuekind.LocalDateTime](ctx, a, v)
	}
	return model.Attribute{}, model.NewError(model.ErrUnsupported, fmt.Sprintf("%q holds no values", a.Label()))
}

func putTyped[V valuekind.Native](ctx context.Context, a *concept.RemoteAttributeType, v valuekind.Value) (model.Attribute, error) {
	typed, err := concept.Narrow[V](a.Local())
	if err != nil {
		return model.Attribute{}, err
	}
	native, err := valuekind.As[V](v)
	if err != nil {
		return model.Attribute{}, err
	}
	attr, err := typed.AsRemote(a.Transaction()).Put(ctx, native)
	if err != nil {
		return model.Attribute{}, err
	}
	return model.FromAttribute(attr)
}

func getValue(ctx context.Context, a *concept.RemoteAttributeType, v valuekind.Value) (model.Lookup[model.Attribute], error) {
	switch a.ValueKind() {
	case valuekind.Boolean:
		return getTyped[bool](ctx, a, v)
	case valuekind.Long:
		return getTyped[int64](ctx, a, v)
	case valuekind.Double:
		return getTyped[float64](ctx, a, v)
	case valuekind.String:
		return getTyped[string](ctx, a, v)
	case valuekind.DateTime:
		return getTyped[valuekind.LocalDateTime](ctx, a, v)
	}
	return model.Lookup[model.Attribute]{}, model.NewError(model.ErrUnsupported, fmt.Sprintf("%q holds no values", a.Label()))
}

func getTyped[V valuekind.Native](ctx context.Context, a *concept.RemoteAttributeType, v valuekind.Value) (model.Lookup[model.Attribute], error) {
	typed, err := concept.Narrow[V](a.Local())
	if err != nil {
		return model.Lookup[model.Attribute]{}, err
	}
	native, err := valuekind.As[V](v)
	if err != nil {
		return model.Lookup[model.Attribute]{}, err
	}
	attr, ok, err := typed.AsRemote(a.Transaction()).Get(ctx, native)
	if err != nil || !ok {
		return model.Absent[model.Attribute](), err
	}
	m, err := model.FromAttribute(attr)
	if err != nil {
		return model.Lookup[model.Attribute]{}, err
	}
	return model.Found(m), nil
}
