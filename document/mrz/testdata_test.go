package mrz

const (
	td3Line1 = "P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<"
	td3Line2 = "L898902C36UTO7408122F1204159ZE184226B<<<<<10"
	td3Mrz   = td3Line1 + "\n" + td3Line2

	// older ICAO sample whose composite digit does not reconcile
	td3LegacyLine2 = "L898902C<3UTO6908061F9406236ZE184226B<<<<<10"

	// unknown birth day and month; accepted through the composite alone
	td3UnknownBirthLine2 = "L898902C36UTO7400<<1F1204159ZE184226B<<<<<18"
	// document number with an inner filler
	td3InnerFillerLine2 = "AB12<34560UTO7408122F1204159ZE184226B<<<<<12"

	td1Line1 = "I<UTOD231458907<<<<<<<<<<<<<<<"
	td1Line2 = "7408122F1204159UTO<<<<<<<<<<<6"
	td1Line3 = "ERIKSSON<<ANNA<MARIA<<<<<<<<<<"
	td1Mrz   = td1Line1 + "\n" + td1Line2 + "\n" + td1Line3
)
