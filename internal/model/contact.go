package model

import "time"

// Contact represents a row in the `contacts` table.  Every contact
// belongs to exactly one user; ownership is expressed as a foreign key
// and enforced in the repository queries, never as a back reference.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – owner of the contact (users.id).
//  Name        – first name.
//  Surname     – last name.
//  Email       – contact email address.
//  Phone       – phone number.
//  DateOfBirth – birthday, used by the upcoming-birthdays query.
//  CreatedAt   – timestamp of creation.
//  UpdatedAt   – timestamp of last update.
type Contact struct {
    ID          uint64    // contacts.id
    UserID      uint64    // contacts.user_id
    Name        string    // contacts.name
    Surname     string    // contacts.surname
    Email       string    // contacts.email
    Phone       string    // contacts.phone
    DateOfBirth time.Time // contacts.date_of_birth
    CreatedAt   time.Time // contacts.created_at
    UpdatedAt   time.Time // contacts.updated_at
}
