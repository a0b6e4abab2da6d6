package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tagmarks/tagmarks-server/internal/domain"
	domainerrors "github.com/tagmarks/tagmarks-server/internal/errors"
	"github.com/tagmarks/tagmarks-server/internal/store"
)

// TagResolver turns tag names into tag ids, creating missing tags.
type TagResolver struct {
	store  *store.Store
	logger *slog.Logger
}

// NewTagResolver creates a new tag resolver.
func NewTagResolver(store *store.Store, logger *slog.Logger) *TagResolver {
	return &TagResolver{
		store:  store,
		logger: logger,
	}
}

// ResolveTags maps names to the ids of the user's live tags, creating USER
// tags for names not seen before. The result has one id per input name, in
// input order; repeated names yield repeated ids. Names are matched exactly.
func (r *TagResolver) ResolveTags(ctx context.Context, userID string, names []string) ([]string, error) {
	return r.ResolveTagsAs(ctx, userID, names, domain.TagCreatorUser)
}

// ResolveTagsAs is ResolveTags with an explicit creator for new tags.
// Existing tags keep their record and creator.
func (r *TagResolver) ResolveTagsAs(ctx context.Context, userID string, names []string, creator domain.TagCreator) ([]string, error) {
	if !creator.Valid() {
		return nil, domainerrors.Validationf("invalid tag creator %q", creator)
	}
	for i, name := range names {
		if strings.TrimSpace(name) == "" {
			return nil, domainerrors.ValidationWithDetails("tag names must not be blank",
				map[string]int{"index": i})
		}
	}

	ids := make([]string, 0, len(names))
	resolved := make(map[string]string, len(names))
	for _, name := range names {
		if id, ok := resolved[name]; ok {
			ids = append(ids, id)
			continue
		}

		tag, created, err := r.store.FindOrCreateTag(ctx, userID, name, creator)
		if err != nil {
			return nil, fromStore(err, "tag not found")
		}
		if created {
			r.logger.Debug("tag created",
				"tag_id", tag.ID,
				"user_id", userID,
				"creator", creator,
			)
		}

		resolved[name] = tag.ID
		ids = append(ids, tag.ID)
	}
	return ids, nil
}

// TagNamesFor maps ids to the names of live tags in order. Unknown and
// soft-deleted ids are dropped.
func (r *TagResolver) TagNamesFor(ctx context.Context, tagIDs []string) ([]string, error) {
	tags, err := r.store.GetTagsByIDs(ctx, tagIDs)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		if !t.IsDeleted() {
			names = append(names, t.Name)
		}
	}
	return names, nil
}

// TagHistory returns the names of the user's live tags and, separately,
// those that came from the tag generator.
func (r *TagResolver) TagHistory(ctx context.Context, userID string) (all, liked []string, err error) {
	tags, err := r.store.ListTagsByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	sortTagsByName(tags)

	all = make([]string, 0, len(tags))
	liked = []string{}
	for _, t := range tags {
		all = append(all, t.Name)
		if t.Creator == domain.TagCreatorService {
			liked = append(liked, t.Name)
		}
	}
	return all, liked, nil
}
