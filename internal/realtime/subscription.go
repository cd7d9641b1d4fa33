// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

package realtime

import (
	"fmt"

	"github.com/tomtom215/picnic-realtime/internal/changefeed"
)

// Channel is one of the two streaming endpoints. The value doubles as the
// metrics label for the channel.
type Channel string

const (
	// ChannelVote streams fan-vote changes: the vote row, its items, and
	// insert-only pick events.
	ChannelVote Channel = "vote"

	// ChannelArtistVote streams artist-vote changes: the vote row and its
	// items. Picks are not replicated for artist votes.
	ChannelArtistVote Channel = "artist_vote"
)

// WatchSet returns the change-feed filters for one vote on this channel.
//
// The vote channel watches three tables: the vote row itself by primary
// key, its items by parent id, and pick inserts by parent id. Pick updates
// and deletes are excluded: the client re-derives totals from item rows,
// so only the insert signal matters.
func (c Channel) WatchSet(voteID int64) ([]changefeed.Filter, error) {
	switch c {
	case ChannelVote:
		return []changefeed.Filter{
			changefeed.Eq(changefeed.TableVote, "id", voteID),
			changefeed.Eq(changefeed.TableVoteItem, "vote_id", voteID),
			changefeed.Eq(changefeed.TableVotePick, "vote_id", voteID).WithOps(changefeed.OpInsert),
		}, nil
	case ChannelArtistVote:
		return []changefeed.Filter{
			changefeed.Eq(changefeed.TableArtistVote, "id", voteID),
			changefeed.Eq(changefeed.TableArtistVoteItem, "artist_vote_id", voteID),
		}, nil
	}
	return nil, fmt.Errorf("realtime: unknown channel %q", c)
}

func (c Channel) String() string { return string(c) }
