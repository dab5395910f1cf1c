package telegram

// UI texts, kept close to the bot's original voice.
const (
	helpText = "You can control me by sending me these commands:\n\n" +
		"/food - I'll tell you the complete menu of the day.\n" +
		"/fooden - I'll tell you the complete menu of the day in English only.\n" +
		"/foodfi - I'll tell you the complete menu of the day in Finnish only.\n" +
		"/tomorrow - I'll tell you tomorrow's menu.\n" +
		"/open - I'll tell you the opening hours of the staff restaurant.\n" +
		"/subscribe - I'll send you a message everyday with the complete menu of the day.\n" +
		"/unsubscribe - I'll stop sending you a message everyday.\n" +
		"/status - I'll tell you whether you are subscribed."

	startText = "Hi! I'm HiomoBot! " + helpText

	openText = "Restaurant Open: 8:00 - 14:30\n" +
		"Lunch Served: 11:00 - 13:30"

	menuUnavailableText = "No menu available today. Sorry!"

	subscribedFmt = "You are now subscribed to HiomoBot! You will receive the menu everyday at %s."

	unsubscribedText  = "You are now unsubscribed from HiomoBot."
	notSubscribedText = "You can't unsubscribe if you have no subscription."
	statusOnFmt       = "You are subscribed. The menu arrives everyday at %s."
	statusOffText     = "You are not subscribed. Send /subscribe to get the daily menu."
	internalErrorText = "Something went wrong on my side. Please try again later."
)
