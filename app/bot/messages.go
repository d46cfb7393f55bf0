package bot

const (
	msgWelcome = "👋 Welcome!\n\nSend me a secret code and I'll send you the file behind it."
	msgHelp    = "Send a code to get a file.\n\nAdmins: send a file to store it, /admin opens the panel, /cancel aborts the current step."

	msgSubscribe      = "📢 Join our channel first, then press \"I've joined\"."
	msgSubscribeOK    = "✅ Thanks! You can send codes now."
	msgSubscribeStill = "You haven't joined the channel yet."

	msgNotFound    = "❌ Nothing found for this code."
	msgRateLimited = "⏳ Too many requests. Try again in a minute."
	msgTryLater    = "⚠️ Something went wrong, try again later."
	msgNoPerm      = "⛔ You don't have permission for this."
	msgNoPermAlert = "No permission!"
	msgExpired     = "This step has expired."
	msgUnknownCmd  = "Unknown command. Try /help."

	msgUploadAdmins  = "⛔ Only admins can upload files."
	msgAskCode       = "🔑 Send the secret code for this file, or let me generate one."
	msgCodeTaken     = "❌ This code is already taken, pick another one."
	msgAutoFailed    = "⚠️ Couldn't generate a free code, send one yourself."
	msgSaved         = "✅ Saved!\n\nCode: `%s`"
	msgCancelled     = "Cancelled."
	msgNothingToStop = "Nothing to cancel."
	msgTextExpected  = "Send the answer as text, or /cancel."
	msgNoUpload      = "No upload is waiting for a code."

	msgCodeEmpty   = "❌ The code can't be empty."
	msgCodeTooLong = "❌ The code is too long."
	msgCodeInvalid = "❌ Use only latin letters and digits."
	msgCodeDigits  = "❌ Use digits only."
	msgCodeLength  = "❌ The code must be exactly %d characters long."

	msgAdminPanel = "🛠 Admin panel\n\n📁 Files: %d\n👥 Users: %d\n👮 Admins: %d"
	msgStats      = "📊 Stats\n\n📁 Files: %d\n👥 Users: %d\n👮 Admins: %d\n⏱ Retention: %s"
	msgEmptyList  = "No files yet."
	msgListHeader = "🗂 Recent files:\n\n"
	msgTopHeader  = "🔥 Most viewed:\n\n"

	msgDeleteUsage  = "Usage: /delete <code>"
	msgAskDelete    = "Send the code of the file to delete."
	msgDeleted      = "🗑 File `%s` deleted."
	msgDeleteAlert  = "Deleted"
	msgNotFoundCode = "❌ No file with code `%s`."

	msgAddAdminUsage = "Usage: /addadmin <user id>"
	msgAskAdmin      = "Send the new admin's user id, or forward a message from them."
	msgBadUserID     = "❌ That's not a valid user id."
	msgAdminAdded    = "✅ User %d is now an admin."

	msgAskBroadcast     = "📣 Send the message to broadcast to every user."
	msgBroadcastEmpty   = "❌ The message is empty."
	msgBroadcastRunning = "A broadcast is already running."
	msgBroadcastStarted = "📣 Broadcasting to %d users..."
	msgBroadcastDone    = "📣 Broadcast finished.\n\n✅ Sent: %d\n❌ Failed: %d"
	msgBroadcastStopped = "📣 Broadcast cancelled.\n\n✅ Sent: %d\n❌ Failed: %d"
	msgBroadcastCancel  = "Stopping broadcast"
	msgNoBroadcast      = "No broadcast is running."
)

const (
	actionGenerate     = "wizard:generate"
	actionWizardCancel = "wizard:cancel"
	actionSubCheck     = "sub:check"

	actionAdminStats     = "admin:stats"
	actionAdminTop       = "admin:top"
	actionAdminList      = "admin:list"
	actionAdminBroadcast = "admin:broadcast"
	actionAdminStop      = "admin:broadcast_cancel"
	actionAdminAdd       = "admin:addadmin"
	actionAdminDelete    = "admin:delete"

	// followed by the code
	actionDeleteMedia = "media:delete:"
)
