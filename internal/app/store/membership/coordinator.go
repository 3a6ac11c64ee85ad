// internal/app/store/membership/coordinator.go
//
// The membership coordinator is the only writer of the Team.members ↔
// User.team_id pair. Team.members is the source of truth; every User's
// team_id is a derived back-reference this package keeps in sync across
// team create/update/delete and user reassignment/deletion.
//
// The multi-step reference updates are deliberately not transactional:
// each request is a lost-update race against concurrent writers to the
// same team or users, and the last write wins. Reconcile is the
// compensating pass that re-derives every back-reference from the member
// lists when drift is suspected.
package membership

import (
	"context"
	"time"

	teamstore "github.com/dalemusser/taskhub/internal/app/store/teams"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Coordinator struct {
	teams *teamstore.Store
	users *mongo.Collection
	log   *zap.Logger
}

func New(db *mongo.Database, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		teams: teamstore.New(db),
		users: db.Collection("users"),
		log:   logger,
	}
}

// CreateTeam inserts the team and then points every listed member at it.
// A duplicate name fails on the insert, before any user is touched. A
// failure between the insert and the member updates leaves drift that
// Reconcile repairs.
func (c *Coordinator) CreateTeam(ctx context.Context, name string, memberIDs []primitive.ObjectID, creator primitive.ObjectID) (models.Team, error) {
	team, err := c.teams.Create(ctx, models.Team{
		Name:      name,
		Members:   memberIDs,
		CreatedBy: creator,
	})
	if err != nil {
		return models.Team{}, err
	}

	if err := c.setTeamRef(ctx, memberIDs, team.ID); err != nil {
		c.log.Error("member reference update failed after team insert; run reconcile",
			zap.String("team_id", team.ID.Hex()),
			zap.Error(err))
		return models.Team{}, err
	}
	return team, nil
}

// UpdateTeam replaces the member list wholesale with memberIDs (nil or
// empty clears the team) and renames the team when newName is non-empty.
// Removed members have their back-reference cleared, added members have
// it set, unchanged members are untouched.
func (c *Coordinator) UpdateTeam(ctx context.Context, teamID primitive.ObjectID, newName string, memberIDs []primitive.ObjectID) (models.Team, error) {
	team, err := c.teams.GetByID(ctx, teamID)
	if err != nil {
		return models.Team{}, err
	}

	current := make(map[primitive.ObjectID]struct{}, len(team.Members))
	for _, id := range team.Members {
		current[id] = struct{}{}
	}
	requested := make(map[primitive.ObjectID]struct{}, len(memberIDs))
	for _, id := range memberIDs {
		requested[id] = struct{}{}
	}

	var toRemove, toAdd []primitive.ObjectID
	for _, id := range team.Members {
		if _, keep := requested[id]; !keep {
			toRemove = append(toRemove, id)
		}
	}
	for _, id := range memberIDs {
		if _, had := current[id]; !had {
			toAdd = append(toAdd, id)
		}
	}

	if err := c.clearTeamRef(ctx, toRemove); err != nil {
		return models.Team{}, err
	}
	if err := c.setTeamRef(ctx, toAdd, teamID); err != nil {
		return models.Team{}, err
	}
	if err := c.teams.Replace(ctx, teamID, newName, memberIDs); err != nil {
		return models.Team{}, err
	}
	return c.teams.GetByID(ctx, teamID)
}

// DeleteTeam clears every member's back-reference and then removes the
// team. The order matters: clearing first avoids a window where users
// point at a nonexistent team.
func (c *Coordinator) DeleteTeam(ctx context.Context, teamID primitive.ObjectID) error {
	team, err := c.teams.GetByID(ctx, teamID)
	if err != nil {
		return err
	}
	if err := c.clearTeamRef(ctx, team.Members); err != nil {
		return err
	}
	_, err = c.teams.Delete(ctx, teamID)
	return err
}

// AssignUser moves a user onto teamID (nil detaches them). Both sides are
// written: the user is pulled from every member list, added to the new
// team's list, and the back-reference is updated last.
func (c *Coordinator) AssignUser(ctx context.Context, userID primitive.ObjectID, teamID *primitive.ObjectID) error {
	if err := c.teams.PullMemberEverywhere(ctx, userID); err != nil {
		return err
	}
	if teamID == nil {
		return c.clearTeamRef(ctx, []primitive.ObjectID{userID})
	}
	if _, err := c.teams.GetByID(ctx, *teamID); err != nil {
		return err
	}
	if err := c.teams.AddMember(ctx, *teamID, userID); err != nil {
		return err
	}
	return c.setTeamRef(ctx, []primitive.ObjectID{userID}, *teamID)
}

// RemoveUserEverywhere erases a deleted user from every team member list
// so no dangling references remain.
func (c *Coordinator) RemoveUserEverywhere(ctx context.Context, userID primitive.ObjectID) error {
	return c.teams.PullMemberEverywhere(ctx, userID)
}

// Reconcile re-derives every user's team back-reference from the member
// lists and repairs drift left by interrupted multi-step updates. It
// returns the number of users corrected.
func (c *Coordinator) Reconcile(ctx context.Context) (int64, error) {
	teams, err := c.teams.List(ctx)
	if err != nil {
		return 0, err
	}

	desired := make(map[primitive.ObjectID]primitive.ObjectID)
	for _, t := range teams {
		for _, uid := range t.Members {
			// A user listed by two teams keeps the first; the duplicate
			// listing itself is drift an operator has to resolve.
			if _, seen := desired[uid]; !seen {
				desired[uid] = t.ID
			}
		}
	}

	var fixed int64

	// Point every listed member at its team.
	for uid, tid := range desired {
		res, err := c.users.UpdateOne(ctx,
			bson.M{"_id": uid, "team_id": bson.M{"$ne": tid}},
			bson.M{"$set": bson.M{"team_id": tid, "updated_at": time.Now().UTC()}})
		if err != nil {
			return fixed, err
		}
		fixed += res.ModifiedCount
	}

	// Clear back-references no member list justifies.
	memberIDs := make([]primitive.ObjectID, 0, len(desired))
	for uid := range desired {
		memberIDs = append(memberIDs, uid)
	}
	res, err := c.users.UpdateMany(ctx,
		bson.M{"team_id": bson.M{"$ne": nil}, "_id": bson.M{"$nin": memberIDs}},
		bson.M{"$unset": bson.M{"team_id": ""}, "$set": bson.M{"updated_at": time.Now().UTC()}})
	if err != nil {
		return fixed, err
	}
	fixed += res.ModifiedCount

	if fixed > 0 {
		c.log.Info("membership reconcile repaired drift", zap.Int64("users_fixed", fixed))
	}
	return fixed, nil
}

func (c *Coordinator) setTeamRef(ctx context.Context, userIDs []primitive.ObjectID, teamID primitive.ObjectID) error {
	if len(userIDs) == 0 {
		return nil
	}
	_, err := c.users.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": userIDs}},
		bson.M{"$set": bson.M{"team_id": teamID, "updated_at": time.Now().UTC()}})
	return err
}

func (c *Coordinator) clearTeamRef(ctx context.Context, userIDs []primitive.ObjectID) error {
	if len(userIDs) == 0 {
		return nil
	}
	_, err := c.users.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": userIDs}},
		bson.M{"$unset": bson.M{"team_id": ""}, "$set": bson.M{"updated_at": time.Now().UTC()}})
	return err
}
