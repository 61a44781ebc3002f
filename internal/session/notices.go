package session

import "foodshare/pkg/types"

var (
	noticeWelcomeBackWrapped = types.Notice{
		Title:       "Welcome Back!",
		Description: "We've loaded your personalized donor information. Explore the impact of your generosity!",
		Variant:     types.NoticeDefault,
	}
	noticeWelcomeBackLookup = types.Notice{
		Title:       "Welcome Back!",
		Description: "We've loaded your previous donation information. Explore the impact of your generosity!",
		Variant:     types.NoticeDefault,
	}
	noticeWelcomeBackSubmitted = types.Notice{
		Title:       "Welcome Back!",
		Description: "Your personalized donor information has been loaded.",
		Variant:     types.NoticeDefault,
	}
	noticeDonorNotFound = types.Notice{
		Title:       "Donor Not Found",
		Description: "We couldn't find donation information for the provided email. Please enter a donation amount to see its impact.",
		Variant:     types.NoticeDefault,
	}
	noticeDecodeFailed = types.Notice{
		Title:       "Error",
		Description: "Could not decrypt donor data. The URL may be invalid.",
		Variant:     types.NoticeDestructive,
	}
	noticeNotConfigured = types.Notice{
		Title:       "Configuration Error",
		Description: msgNotConfigured,
		Variant:     types.NoticeDestructive,
	}
)

const msgNotConfigured = "Donor links cannot be read or protected because encryption is not configured."
