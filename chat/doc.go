// Package chat connects the bot to Twitch IRC and feeds the dispatcher.
//
// Bridge translates go-twitch-irc callbacks into dispatch notifications:
//   - JOIN and PART become Join and Part (Twitch sends no part reason);
//   - PRIVMSG goes through command handling and becomes a Message, except
//     /me actions, which are reported as an ACTION Ctcp to the channel;
//   - whispers become private Messages, which are never recorded;
//   - CLEARCHAT aimed at a user becomes a Kick by the channel broadcaster;
//   - USERNOTICE (subs, raids, announcements) becomes a Notice.
//
// Channels are reported with a leading "#". Replies are sent with Say.
//
// Credentials: the IRC client requires a bot username and an OAuth token with
// chat:read/chat:edit scopes (TWITCH_BOT_USERNAME, TWITCH_OAUTH_TOKEN).
package chat
