package main

// demoEmail is extracted when no source flag is given
const demoEmail = `
Dear Jane Smith,

Your flight booking has been confirmed. Here are your flight details:

Flight: UA789
From: SFO
To: JFK
Departure: 2024-03-25 9:00 AM
Arrival: 2024-03-25 5:15 PM
Booking Reference: XYZ789

Total Journey Time: 8 hours 15 minutes
Status: Confirmed

Thank you for choosing United Airlines!
`
