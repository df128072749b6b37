// Package savedview assembles a viewer's personalized saved-locations view.
package savedview

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/anonto42/spotdrop/backend/internal/models"
	"github.com/anonto42/spotdrop/backend/internal/overlay"
	"github.com/anonto42/spotdrop/backend/internal/repositories"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// UncategorisedKey is the reserved personal-scope key for saved locations outside any folder
const UncategorisedKey = "uncategorised"

// Row is one location as the viewer sees it
type Row struct {
	models.EffectiveLocation
	PostURL  string     `json:"post_url,omitempty"`
	PostedBy *uint      `json:"posted_by,omitempty"`
	PostedAt *time.Time `json:"posted_at,omitempty"`
	AddedAt  time.Time  `json:"added_at"`
}

// FolderInfo is the folder metadata shipped alongside the rows
type FolderInfo struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	CreatorID *uint  `json:"creator_id"`
	OwnerIDs  []uint `json:"owner_ids"`
}

// SavedView is keyed by scope, then by folder id (or UncategorisedKey)
type SavedView struct {
	Personal map[string][]Row      `json:"personal"`
	Shared   map[string][]Row      `json:"shared"`
	Followed map[string][]Row      `json:"followed"`
	Folders  map[string]FolderInfo `json:"folders"`
}

type scope int

const (
	scopePersonal scope = iota
	scopeShared
	scopeFollowed
)

// Aggregator builds saved views with a fixed number of batched reads per call
type Aggregator struct {
	folders repositories.FolderRepository
	saved   repositories.SavedLocationRepository
	posts   repositories.PostRepository
	edits   repositories.LocationEditRepository
	log     logrus.FieldLogger
}

// NewAggregator creates a new Aggregator
func NewAggregator(
	folders repositories.FolderRepository,
	saved repositories.SavedLocationRepository,
	posts repositories.PostRepository,
	edits repositories.LocationEditRepository,
	logger logrus.FieldLogger,
) *Aggregator {
	return &Aggregator{
		folders: folders,
		saved:   saved,
		posts:   posts,
		edits:   edits,
		log:     logger.WithField("component", "savedview"),
	}
}

// batch holds the results of the parallel reads of step two
type batch struct {
	folderRows    []models.FolderLocation
	folderPosts   map[uint]models.Post
	owners        map[uint][]uint
	folders       []models.Folder
	uncategorised []models.SavedLocation
	savedPosts    map[uint]models.Post
	posted        []uint
}

// BuildSavedView returns the viewer's personal, shared and followed folders.
// Any storage error aborts the whole view.
func (a *Aggregator) BuildSavedView(ctx context.Context, viewerID uint) (*SavedView, error) {
	var created, coOwned, followed []uint
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		created, err = a.folders.GetCreatedFolderIDs(gctx, viewerID)
		return err
	})
	g.Go(func() (err error) {
		coOwned, err = a.folders.GetCoOwnedFolderIDs(gctx, viewerID)
		return err
	})
	g.Go(func() (err error) {
		followed, err = a.folders.GetFollowedFolderIDs(gctx, viewerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	scopes := classify(created, coOwned, followed)
	folderIDs := make([]uint, 0, len(scopes))
	for id := range scopes {
		folderIDs = append(folderIDs, id)
	}
	sort.Slice(folderIDs, func(i, j int) bool { return folderIDs[i] < folderIDs[j] })

	b, err := a.fetchBatch(ctx, viewerID, folderIDs)
	if err != nil {
		return nil, err
	}

	viewerEdits, err := a.edits.GetEditsByUser(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	ownEdit := make(map[uint]*models.LocationEdit, len(viewerEdits))
	for i := range viewerEdits {
		ownEdit[viewerEdits[i].LocationID] = &viewerEdits[i]
	}

	ownerEdit, err := a.ownerEdits(ctx, scopes, b)
	if err != nil {
		return nil, err
	}

	view := &SavedView{
		Personal: map[string][]Row{UncategorisedKey: {}},
		Shared:   map[string][]Row{},
		Followed: map[string][]Row{},
		Folders:  make(map[string]FolderInfo, len(b.folders)),
	}
	for _, f := range b.folders {
		key := folderKey(f.ID)
		owners := b.owners[f.ID]
		if owners == nil {
			owners = []uint{}
		}
		view.Folders[key] = FolderInfo{ID: f.ID, Name: f.Name, Color: f.Color, CreatorID: f.CreatorID, OwnerIDs: owners}
		view.scopeMap(scopes[f.ID])[key] = []Row{}
	}

	inPersonalFolder := map[uint]bool{}
	for _, fl := range b.folderRows {
		s := scopes[fl.FolderID]
		var fallback *models.LocationEdit
		if s != scopePersonal {
			fallback = ownerEdit[fl.LocationID]
		} else {
			inPersonalFolder[fl.LocationID] = true
		}
		key := folderKey(fl.FolderID)
		m := view.scopeMap(s)
		m[key] = append(m[key], newRow(fl.Location, ownEdit[fl.LocationID], fallback, b.folderPosts, fl.CreatedAt))
	}

	listed := map[uint]bool{}
	for _, sl := range b.uncategorised {
		listed[sl.LocationID] = true
		view.Personal[UncategorisedKey] = append(view.Personal[UncategorisedKey],
			newRow(sl.Location, ownEdit[sl.LocationID], nil, b.savedPosts, sl.CreatedAt))
	}

	// Locations the viewer posted stay personal even when they are only
	// reachable through a shared or followed folder.
	posted := make(map[uint]bool, len(b.posted))
	for _, id := range b.posted {
		posted[id] = true
	}
	for _, fl := range b.folderRows {
		id := fl.LocationID
		if !posted[id] || inPersonalFolder[id] || listed[id] {
			continue
		}
		listed[id] = true
		view.Personal[UncategorisedKey] = append(view.Personal[UncategorisedKey],
			newRow(fl.Location, ownEdit[id], nil, b.folderPosts, fl.CreatedAt))
	}

	a.log.WithFields(logrus.Fields{
		"viewer_id":     viewerID,
		"folders":       len(folderIDs),
		"folder_rows":   len(b.folderRows),
		"uncategorised": len(view.Personal[UncategorisedKey]),
	}).Debug("Saved view built")
	return view, nil
}

func (a *Aggregator) fetchBatch(ctx context.Context, viewerID uint, folderIDs []uint) (*batch, error) {
	var b batch
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := a.folders.GetLocationsByFolderIDs(gctx, folderIDs)
		if err != nil {
			return err
		}
		b.folderRows = rows
		b.folderPosts, err = a.posts.LatestByLocationIDs(gctx, locationIDsOf(rows))
		return err
	})
	g.Go(func() (err error) {
		b.owners, err = a.folders.GetOwnerIDsByFolderIDs(gctx, folderIDs)
		return err
	})
	g.Go(func() (err error) {
		b.folders, err = a.folders.GetFoldersByIDs(gctx, folderIDs)
		return err
	})
	g.Go(func() error {
		saved, err := a.saved.GetUncategorised(gctx, viewerID, folderIDs)
		if err != nil {
			return err
		}
		b.uncategorised = saved
		ids := make([]uint, len(saved))
		for i, s := range saved {
			ids[i] = s.LocationID
		}
		b.savedPosts, err = a.posts.LatestByLocationIDs(gctx, ids)
		return err
	})
	g.Go(func() (err error) {
		b.posted, err = a.posts.LocationIDsPostedBy(gctx, viewerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &b, nil
}

// ownerEdits picks, per location in a shared or followed folder, the most
// recently updated edit among the owners of folders holding that location.
// Ties go to the higher owner id.
func (a *Aggregator) ownerEdits(ctx context.Context, scopes map[uint]scope, b *batch) (map[uint]*models.LocationEdit, error) {
	eligible := map[uint]map[uint]bool{}
	ownerSet := map[uint]bool{}
	for _, fl := range b.folderRows {
		if scopes[fl.FolderID] == scopePersonal {
			continue
		}
		if eligible[fl.LocationID] == nil {
			eligible[fl.LocationID] = map[uint]bool{}
		}
		for _, owner := range b.owners[fl.FolderID] {
			eligible[fl.LocationID][owner] = true
			ownerSet[owner] = true
		}
	}
	best := make(map[uint]*models.LocationEdit, len(eligible))
	if len(eligible) == 0 || len(ownerSet) == 0 {
		return best, nil
	}

	edits, err := a.edits.GetEditsByUsersAndLocations(ctx, sortedKeys(ownerSet), sortedKeys(eligible))
	if err != nil {
		return nil, err
	}
	for i := range edits {
		e := &edits[i]
		if !eligible[e.LocationID][e.UserID] {
			continue
		}
		if cur := best[e.LocationID]; cur == nil || newerEdit(e, cur) {
			best[e.LocationID] = e
		}
	}
	return best, nil
}

func newerEdit(a, b *models.LocationEdit) bool {
	if !a.LastUpdated.Equal(b.LastUpdated) {
		return a.LastUpdated.After(b.LastUpdated)
	}
	return a.UserID > b.UserID
}

// classify assigns every folder to exactly one scope: created beats co-owned beats followed
func classify(created, coOwned, followed []uint) map[uint]scope {
	scopes := make(map[uint]scope, len(created)+len(coOwned)+len(followed))
	for _, id := range followed {
		scopes[id] = scopeFollowed
	}
	for _, id := range coOwned {
		scopes[id] = scopeShared
	}
	for _, id := range created {
		scopes[id] = scopePersonal
	}
	return scopes
}

func (v *SavedView) scopeMap(s scope) map[string][]Row {
	switch s {
	case scopeShared:
		return v.Shared
	case scopeFollowed:
		return v.Followed
	default:
		return v.Personal
	}
}

func newRow(loc models.Location, own, fallback *models.LocationEdit, latest map[uint]models.Post, addedAt time.Time) Row {
	row := Row{
		EffectiveLocation: overlay.Merge(loc, own, fallback),
		AddedAt:           addedAt,
	}
	if p, ok := latest[loc.ID]; ok {
		postedAt := p.CreatedAt
		row.PostURL = p.URL
		row.PostedBy = p.UserID
		row.PostedAt = &postedAt
	}
	return row
}

func folderKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func locationIDsOf(rows []models.FolderLocation) []uint {
	seen := make(map[uint]bool, len(rows))
	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		if !seen[r.LocationID] {
			seen[r.LocationID] = true
			ids = append(ids, r.LocationID)
		}
	}
	return ids
}

func sortedKeys[V any](m map[uint]V) []uint {
	keys := make([]uint, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
